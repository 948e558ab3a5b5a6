package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is a JSON Schema document (the subset the routing API understands:
// type, properties, required, items, enums, and $defs for recursive types).
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	// AdditionalProperties controls whether undeclared properties are allowed;
	// for maps it carries the value schema.
	AdditionalProperties any   `json:"additionalProperties,omitempty"`
	Default              any   `json:"default,omitempty"`
	Enum                 []any `json:"enum,omitempty"`
	// Ref and Defs implement JSON Schema references for recursive types.
	Ref  string             `json:"$ref,omitempty"`
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// For derives the schema for type T. Pointer fields and omitempty fields are
// optional; everything else lands in required. Recursive struct types are
// broken via $defs references.
func For[T any]() *Schema {
	t := reflect.TypeFor[T]()
	gen := &generator{
		visited: make(map[reflect.Type]string),
		defs:    make(map[string]*Schema),
	}

	schema := gen.typeSchema(t, true)
	if len(gen.defs) > 0 {
		schema.Defs = gen.defs
	}
	return schema
}

// generator tracks visited struct types so self-referential shapes terminate.
type generator struct {
	visited map[reflect.Type]string
	defs    map[string]*Schema
}

func (g *generator) typeSchema(t reflect.Type, isRoot bool) *Schema {
	switch t.Kind() {
	case reflect.Pointer:
		return g.typeSchema(t.Elem(), isRoot)

	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: g.typeSchema(t.Elem(), false)}

	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: g.typeSchema(t.Elem(), false)}

	case reflect.Struct:
		return g.structSchema(t, isRoot)

	default:
		// interfaces, channels, funcs: nothing meaningful to advertise
		return &Schema{Type: "object"}
	}
}

func (g *generator) structSchema(t reflect.Type, isRoot bool) *Schema {
	if defName, seen := g.visited[t]; seen {
		return &Schema{Ref: "#/$defs/" + defName}
	}

	recursive := referencesSelf(t, t, make(map[reflect.Type]bool))
	defName := defNameFor(t)
	if recursive {
		// Mark visited before descending so inner references resolve to $defs.
		g.visited[t] = defName
	}

	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldName, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fieldSchema := g.typeSchema(field.Type, false)
		schema.Properties[fieldName] = fieldSchema

		requiredByTag := false
		if fieldSchema.Ref == "" {
			requiredByTag = applySchemaTag(field.Type, field.Tag, fieldSchema)
		}

		if (field.Type.Kind() != reflect.Pointer && !omitEmpty) || requiredByTag {
			required = append(required, fieldName)
		}
	}

	schema.Required = required

	if recursive {
		// Store a copy in $defs so the root schema (which carries Defs) never
		// references itself through the definitions map.
		g.defs[defName] = &Schema{
			Type:       schema.Type,
			Properties: schema.Properties,
			Required:   schema.Required,
		}
		if isRoot {
			return schema
		}
		return &Schema{Ref: "#/$defs/" + defName}
	}

	return schema
}

// jsonName resolves the wire name of a struct field from its json tag.
func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	name = field.Name
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	if tag == "" {
		return name, false, false
	}

	parts := strings.SplitN(tag, ",", 2)
	if parts[0] != "" {
		name = parts[0]
	}
	if len(parts) == 2 {
		omitEmpty = strings.Contains(parts[1], "omitempty")
	}
	return name, omitEmpty, false
}

// applySchemaTag applies `jsonschema:"..."` tag directives to a field schema.
// Supported directives: description=..., enum=... (repeatable), required.
// Reports whether the field was explicitly marked required. Malformed enum
// values are skipped rather than failing the whole schema.
func applySchemaTag(fieldType reflect.Type, tag reflect.StructTag, schema *Schema) bool {
	directives := tag.Get("jsonschema")
	if directives == "" {
		return false
	}

	requiredByTag := false
	for _, directive := range strings.Split(directives, ",") {
		key, value, hasValue := strings.Cut(directive, "=")
		switch {
		case key == "required" && !hasValue:
			requiredByTag = true
		case key == "description" && hasValue:
			schema.Description = value
		case key == "enum" && hasValue:
			if enumValue, err := parseEnumValue(fieldType, value); err == nil {
				schema.Enum = append(schema.Enum, enumValue)
			}
		}
	}
	return requiredByTag
}

// parseEnumValue converts an enum tag literal to the field's Go kind so the
// advertised schema carries correctly typed values.
func parseEnumValue(fieldType reflect.Type, value string) (any, error) {
	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseInt(value, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(value, 64)
	case reflect.Bool:
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("enum tag unsupported for field type %v", fieldType)
	}
}

// referencesSelf reports whether target appears (possibly through pointers,
// slices, arrays or nested structs) among the fields of current.
func referencesSelf(target, current reflect.Type, visited map[reflect.Type]bool) bool {
	if visited[current] {
		return false
	}
	visited[current] = true

	switch current.Kind() {
	case reflect.Struct:
		for i := 0; i < current.NumField(); i++ {
			field := current.Field(i)
			if !field.IsExported() {
				continue
			}
			elem := deref(field.Type)
			if elem == target {
				return true
			}
			if elem.Kind() == reflect.Struct && referencesSelf(target, elem, visited) {
				return true
			}
		}
	case reflect.Pointer, reflect.Slice, reflect.Array:
		elem := deref(current)
		if elem == target {
			return true
		}
		if elem.Kind() == reflect.Struct && referencesSelf(target, elem, visited) {
			return true
		}
	}
	return false
}

// deref unwraps pointers, slices and arrays down to their element type.
func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t
}

func defNameFor(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

// JSONString renders the schema as JSON, optionally indented.
func (s *Schema) JSONString(indent bool) (string, error) {
	var (
		raw []byte
		err error
	)
	if indent {
		raw, err = json.MarshalIndent(s, "", "  ")
	} else {
		raw, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(raw), nil
}

// String returns the compact JSON representation of the schema.
func (s *Schema) String() string {
	out, err := s.JSONString(false)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}
