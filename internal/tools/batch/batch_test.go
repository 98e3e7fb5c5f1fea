package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    []string
		wantErr bool
	}{
		{
			name:  "single string",
			input: "1234567890",
			want:  []string{"1234567890"},
		},
		{
			name:  "single string with spaces",
			input: "  1234567890 ",
			want:  []string{"1234567890"},
		},
		{
			name:  "array of strings",
			input: []interface{}{"id1", "id2", "id3"},
			want:  []string{"id1", "id2", "id3"},
		},
		{
			name:  "duplicates dropped",
			input: []interface{}{"id1", "id2", "id1"},
			want:  []string{"id1", "id2"},
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "empty array",
			input:   []interface{}{},
			wantErr: true,
		},
		{
			name:    "array with non-string",
			input:   []interface{}{"id1", 123, "id3"},
			wantErr: true,
		},
		{
			name:    "array with empty string",
			input:   []interface{}{"id1", "", "id3"},
			wantErr: true,
		},
		{
			name:    "invalid type",
			input:   123,
			wantErr: true,
		},
		{
			name:  "JSON string array",
			input: `["111", "222"]`,
			want:  []string{"111", "222"},
		},
		{
			name:    "JSON string empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:  "invalid JSON string",
			input: `[invalid json`,
			want:  []string{`[invalid json`},
		},
		{
			name:  "string starting with bracket (not JSON)",
			input: `[123] Seminar`,
			want:  []string{`[123] Seminar`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, "zoom_id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult("id1", "deleted"),
		NewSuccessResult("id2", "deleted"),
		NewErrorResult("id3", errors.New("event not found")),
	}

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(FormatResults(results)), &br))
	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Len(t, br.Results, 3)
}

func TestProcessBatch(t *testing.T) {
	fn := func(_ context.Context, id string) (string, error) {
		if id == "id2" {
			return "", errors.New("failed to process id2")
		}
		return "processed " + id, nil
	}

	results := ProcessBatch(context.Background(), []string{"id1", "id2", "id3"}, fn)
	require.Len(t, results, 3)

	assert.Equal(t, NewSuccessResult("id1", "processed id1"), results[0])
	assert.Equal(t, StatusError, results[1].Status)
	assert.Equal(t, "failed to process id2", results[1].Error)
	assert.Equal(t, NewSuccessResult("id3", "processed id3"), results[2])
}

func TestProcessBatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fn := func(_ context.Context, id string) (string, error) {
		calls++
		cancel()
		return "ok", nil
	}

	results := ProcessBatch(ctx, []string{"a", "b", "c"}, fn)
	require.Len(t, results, 3)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, context.Canceled.Error(), results[1].Error)
	assert.Equal(t, context.Canceled.Error(), results[2].Error)
}

func TestNewResults(t *testing.T) {
	ok := NewSuccessResult("test-id", "test message")
	assert.Equal(t, Result{ID: "test-id", Status: StatusSuccess, Result: "test message"}, ok)

	failed := NewErrorResult("test-id", errors.New("test error"))
	assert.Equal(t, Result{ID: "test-id", Status: StatusError, Error: "test error"}, failed)
}
