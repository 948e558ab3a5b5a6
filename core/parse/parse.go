package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/kaptinlin/jsonrepair"
)

// ParseAs parses a model-supplied string into T. Primitive targets (string,
// bool, integer, float) are converted directly; complex targets go through
// JSON unmarshaling with two fallbacks: jsonrepair for malformed JSON, then
// unwrapping of schema-shaped {"type": ..., "value": ...} envelopes that
// models sometimes emit instead of plain values.
//
//	args, err := parse.ParseAs[SearchInput](`{query: 'weather in Rome'}`)
func ParseAs[T any](content string) (T, error) {
	var result T

	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		// A JSON-looking payload for a string target may be an envelope.
		if len(content) > 0 && content[0] == '{' {
			if unwrapped, err := unwrapPrimitive(content); err == nil {
				reflect.ValueOf(&result).Elem().SetString(unwrapped)
				return result, nil
			}
		}
		reflect.ValueOf(&result).Elem().SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := parsePrimitive(content, strconv.ParseBool)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetBool(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := parsePrimitive(content, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetFloat(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := parsePrimitive(content, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := parsePrimitive(content, func(s string) (uint64, error) {
			return strconv.ParseUint(s, 10, 64)
		})
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetUint(val)
		return result, nil

	default:
		return parseComplex[T](content)
	}
}

// parsePrimitive converts content with convert, retrying on an unwrapped
// envelope value when the direct conversion fails.
func parsePrimitive[V any](content string, convert func(string) (V, error)) (V, error) {
	val, err := convert(content)
	if err == nil {
		return val, nil
	}

	if unwrapped, unwrapErr := unwrapPrimitive(content); unwrapErr == nil {
		if val, retryErr := convert(unwrapped); retryErr == nil {
			return val, nil
		}
	}

	var zero V
	return zero, err
}

// parseComplex unmarshals content into T, repairing the JSON and unwrapping
// schema envelopes when plain unmarshaling fails.
func parseComplex[T any](content string) (T, error) {
	var result T

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	err = json.Unmarshal([]byte(repairedJSON), &result)
	if err == nil {
		return result, nil
	}

	// Last resort: the model may have emitted schema-shaped wrappers around
	// every value.
	if unwrapped, unwrapErr := unwrapEnvelopes(repairedJSON); unwrapErr == nil {
		if json.Unmarshal([]byte(unwrapped), &result) == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (original content: %s, repaired: %s)", result, err, content, repairedJSON)
}

// unwrapPrimitive extracts the value out of a single {"type","value"}
// envelope and returns its string representation.
func unwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}

	if _, hasType := data["type"]; !hasType {
		return "", fmt.Errorf("not a schema-wrapped value")
	}
	value, hasValue := data["value"]
	if !hasValue || len(data) != 2 {
		return "", fmt.Errorf("not a schema-wrapped value")
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprintf("%v", v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

// unwrapEnvelopes rewrites a document replacing every {"type","value"}
// wrapper with its value, recursively.
//
// Input:  {"name": {"type": "string", "value": "John"}}
// Output: {"name": "John"}
func unwrapEnvelopes(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	result, err := json.Marshal(unwrapValue(data))
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func unwrapValue(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return unwrapValue(value)
			}
		}
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = unwrapValue(val)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = unwrapValue(val)
		}
		return result

	default:
		return data
	}
}
