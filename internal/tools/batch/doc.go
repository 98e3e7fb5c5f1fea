// Package batch runs one events operation over several ids and reports
// partial failures in a single result.
//
// Tools that accept batches take either a single id string or an array of
// ids, parsed with ParseStringOrArray.
package batch
