package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one id in a batch.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray accepts a single id or an array of ids. Duplicates are
// dropped so the same event is never deleted twice in one call.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var raw []string
	switch v := param.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some clients send arrays as a JSON-encoded string.
		var arr []string
		if strings.HasPrefix(v, "[") && json.Unmarshal([]byte(v), &arr) == nil {
			if len(arr) == 0 {
				return nil, fmt.Errorf("%s cannot be empty", paramName)
			}
			items := make([]interface{}, len(arr))
			for i, a := range arr {
				items[i] = a
			}
			return ParseStringOrArray(items, paramName)
		}
		raw = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if strings.TrimSpace(str) == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			raw = append(raw, strings.TrimSpace(str))
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	seen := make(map[string]bool, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Summarize counts the successes and failures in results.
func Summarize(results []Result) BatchResult {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// FormatResults renders the batch summary as indented JSON.
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

// ProcessBatch runs fn for each id in order and collects the results. Once
// ctx is done the remaining ids fail with the context error without
// calling fn.
func ProcessBatch(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (string, error)) []Result {
	results := make([]Result, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		res, err := fn(ctx, id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id, res))
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
