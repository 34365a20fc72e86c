package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RequiredString returns a non-empty string argument.
func RequiredString(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// OptionalString returns a string argument or def.
func OptionalString(args map[string]any, name, def string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return def
}

// OptionalStringPtr returns a pointer to the argument when it was passed,
// which distinguishes "unset" from "set to empty".
func OptionalStringPtr(args map[string]any, name string) *string {
	if v, ok := args[name].(string); ok {
		return &v
	}
	return nil
}

// OptionalInt returns an integer argument or def. JSON numbers arrive as
// float64; numeric strings are accepted too.
func OptionalInt(args map[string]any, name string, def int) (int, error) {
	switch v := args[name].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}

// JSONObjectArg parses an argument holding a JSON object, given either as
// an object or as a string containing one.
func JSONObjectArg(args map[string]any, name string) (map[string]any, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object: %w", name, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a JSON object", name)
	}
}

// JSONArrayArg decodes an argument holding a JSON array into out, given
// either as an array or as a string containing one.
func JSONArrayArg(args map[string]any, name string, out any) error {
	var raw []byte
	switch v := args[name].(type) {
	case nil:
		return fmt.Errorf("%s is required", name)
	case string:
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
		raw = []byte(v)
	case []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%s must be a JSON array: %w", name, err)
		}
		raw = b
	default:
		return fmt.Errorf("%s must be a JSON array", name)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s must be a JSON array: %w", name, err)
	}
	return nil
}
