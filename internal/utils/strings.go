package utils

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxStringLength is the default cap applied when truncating strings
// for log output.
const DefaultMaxStringLength = 500

// JSONToString serializes object to JSON, pretty-printed when indent is true.
// On marshal failure it returns a JSON-formatted error string instead of
// panicking, so the result is always safe to log.
func JSONToString(object any, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen characters, appending a suffix
// recording the original length so readers know data was omitted. A zero or
// negative maxLen falls back to DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}
