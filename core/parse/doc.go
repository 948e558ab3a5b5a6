// Package parse turns model-supplied strings into typed Go values. Models are
// not reliable JSON emitters: arguments arrive with single quotes, trailing
// commas, unquoted keys, or wrapped in schema-shaped {"type","value"}
// envelopes. ParseAs handles the happy path with encoding/json, then falls
// back to jsonrepair and envelope unwrapping before giving up.
package parse
