package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseObjectArray parses a parameter holding a list of objects. MCP clients
// pass it either as a JSON array or as a string containing one.
func ParseObjectArray(param any, paramName string) ([]map[string]any, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var items []any
	switch v := param.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return nil, fmt.Errorf("%s must be a JSON array: %w", paramName, err)
		}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("%s must be an array of objects", paramName)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}

	result := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object", paramName, i)
		}
		result = append(result, obj)
	}
	return result, nil
}

// Summarize aggregates results into a BatchResult.
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

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

// Process runs fn for every item with at most limit calls in flight and
// returns the results in item order. A failing item does not stop the others.
// Items not started before ctx is canceled are reported as errors.
func Process[T any](ctx context.Context, items []T, limit int, id func(T) string, fn func(context.Context, T) (string, error)) []Result {
	results := make([]Result, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = NewErrorResult(id(item), err)
				return nil
			}

			res, err := fn(ctx, item)
			if err != nil {
				results[i] = NewErrorResult(id(item), err)
				return nil
			}
			results[i] = NewSuccessResult(id(item), res)
			return nil
		})
	}
	_ = g.Wait()

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
