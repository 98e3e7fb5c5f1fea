// Package common provides shared helpers for the MCP tool packages:
// argument parsing and the instrumented handler wrapper.
package common
