// Package jsonschema derives JSON Schema documents from Go types via
// reflection. Tools use it to advertise their argument shape to the routed
// model without hand-writing schemas.
//
// Struct fields can refine their generated schema with a `jsonschema` tag:
//
//	type Input struct {
//	    Query string `json:"query" jsonschema:"description=Search query,required"`
//	    Mode  string `json:"mode,omitempty" jsonschema:"enum=fast,enum=deep"`
//	}
package jsonschema
