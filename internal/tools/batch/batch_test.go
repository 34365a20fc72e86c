package batch

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectArray(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []map[string]any
		wantErr string
	}{
		{
			name:  "array of objects",
			input: []any{map[string]any{"email": "a@example.com"}, map[string]any{"email": "b@example.com"}},
			want:  []map[string]any{{"email": "a@example.com"}, {"email": "b@example.com"}},
		},
		{
			name:  "JSON string",
			input: `[{"email": "a@example.com"}]`,
			want:  []map[string]any{{"email": "a@example.com"}},
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: "invites is required",
		},
		{
			name:    "blank string",
			input:   "  ",
			wantErr: "invites cannot be empty",
		},
		{
			name:    "empty array",
			input:   []any{},
			wantErr: "invites cannot be empty",
		},
		{
			name:    "empty JSON array",
			input:   `[]`,
			wantErr: "invites cannot be empty",
		},
		{
			name:    "invalid JSON",
			input:   `[{"email":`,
			wantErr: "invites must be a JSON array",
		},
		{
			name:    "JSON object instead of array",
			input:   `{"email": "a@example.com"}`,
			wantErr: "invites must be a JSON array",
		},
		{
			name:    "array with non-object",
			input:   []any{map[string]any{"email": "a@example.com"}, "b@example.com"},
			wantErr: "invites[1] must be an object",
		},
		{
			name:    "wrong type",
			input:   42.0,
			wantErr: "invites must be an array of objects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObjectArray(tt.input, "invites")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		{ID: "id1", Status: StatusSuccess, Result: "Operation successful"},
		{ID: "id2", Status: StatusSuccess, Result: "Operation successful"},
		{ID: "id3", Status: StatusError, Error: "Something went wrong"},
	}

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(FormatResults(results)), &br))

	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, results, br.Results)
}

func TestProcess(t *testing.T) {
	items := []string{"id1", "id2", "id3"}
	identity := func(s string) string { return s }

	fn := func(_ context.Context, id string) (string, error) {
		if id == "id2" {
			return "", errors.New("failed to process id2")
		}
		return "processed " + id, nil
	}

	results := Process(context.Background(), items, 2, identity, fn)

	assert.Equal(t, []Result{
		NewSuccessResult("id1", "processed id1"),
		{ID: "id2", Status: StatusError, Error: "failed to process id2"},
		NewSuccessResult("id3", "processed id3"),
	}, results)
}

func TestProcess_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	type invite struct{ email string }
	items := []invite{{"a@example.com"}, {"b@example.com"}, {"c@example.com"}}

	var calls []string
	fn := func(_ context.Context, in invite) (string, error) {
		calls = append(calls, in.email)
		cancel()
		return "sent", nil
	}

	results := Process(ctx, items, 1, func(in invite) string { return in.email }, fn)

	assert.Equal(t, []string{"a@example.com"}, calls)
	require.Len(t, results, 3)
	assert.Equal(t, StatusSuccess, results[0].Status)
	for _, r := range results[1:] {
		assert.Equal(t, StatusError, r.Status)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
}

func TestProcess_RespectsLimit(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight atomic.Int32
	fn := func(_ context.Context, n int) (string, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return strconv.Itoa(n), nil
	}

	results := Process(context.Background(), items, 3, strconv.Itoa, fn)

	require.Len(t, results, len(items))
	for i, r := range results {
		assert.Equal(t, strconv.Itoa(i), r.ID)
		assert.Equal(t, strconv.Itoa(i), r.Result)
	}
	assert.LessOrEqual(t, maxInFlight.Load(), int32(3))
}

func TestNewSuccessResult(t *testing.T) {
	result := NewSuccessResult("test-id", "test message")
	assert.Equal(t, Result{ID: "test-id", Status: StatusSuccess, Result: "test message"}, result)
}

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult("test-id", errors.New("test error"))
	assert.Equal(t, Result{ID: "test-id", Status: StatusError, Error: "test error"}, result)
}
