package structured

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cloudwego/eino/schema"
)

var ErrSchemaViolation = errors.New("schema violation")

type Kind string

const (
	String  Kind = "string"
	Number  Kind = "number"
	Integer Kind = "integer"
	Bool    Kind = "bool"
	Enum    Kind = "enum"
	List    Kind = "list"
	Object  Kind = "object"
)

// Field describes one key of a structured output.
type Field struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool
	Enum        []string
	// Elem is the item type of a List. Nil means string items.
	Elem *Field
	// Fields are the keys of an Object.
	Fields []*Field
	// Default replaces the kind default when not nil.
	Default any
}

// Schema is a named set of fields. Its default table is built once by NewSchema.
type Schema struct {
	Name        string
	Description string
	Fields      []*Field

	defaults map[string]any
	toolInfo *schema.ToolInfo
}

func NewSchema(name, description string, fields ...*Field) *Schema {
	s := &Schema{
		Name:        name,
		Description: description,
		Fields:      fields,
	}
	s.defaults = objectDefaults(fields)
	s.toolInfo = &schema.ToolInfo{
		Name:        name,
		Desc:        description,
		ParamsOneOf: schema.NewParamsOneOfByParams(paramsOf(fields)),
	}
	return s
}

// Defaults returns a fresh copy of the default instance.
func (s *Schema) Defaults() map[string]any {
	return deepCopy(s.defaults).(map[string]any)
}

func (s *Schema) ToolInfo() *schema.ToolInfo {
	return s.toolInfo
}

// Validate checks v against the schema and returns a normalized copy in which absent or
// null keys carry their default value.
func (s *Schema) Validate(v any) (map[string]any, error) {
	out, err := validateObject("", s.Fields, v)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func fieldDefault(f *Field) any {
	if f.Default != nil {
		return deepCopy(f.Default)
	}
	switch f.Kind {
	case String, Enum:
		return ""
	case Number, Integer:
		return float64(0)
	case Bool:
		return false
	case List:
		return []any{}
	case Object:
		return objectDefaults(f.Fields)
	default:
		return nil
	}
}

func objectDefaults(fields []*Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = fieldDefault(f)
	}
	return out
}

func validateObject(path string, fields []*Field, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, violation(path, "want object, got %T", v)
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	for _, f := range fields {
		fieldPath := path + "/" + f.Name
		val, present := m[f.Name]
		if !present && f.Required {
			return nil, violation(fieldPath, "required key missing")
		}
		if val == nil {
			out[f.Name] = fieldDefault(f)
			continue
		}
		norm, err := validateValue(fieldPath, f, val)
		if err != nil {
			return nil, err
		}
		out[f.Name] = norm
	}
	return out, nil
}

func validateValue(path string, f *Field, v any) (any, error) {
	switch f.Kind {
	case String:
		if _, ok := v.(string); !ok {
			return nil, violation(path, "want string, got %T", v)
		}
		return v, nil
	case Enum:
		s, ok := v.(string)
		if !ok {
			return nil, violation(path, "want string, got %T", v)
		}
		if s != "" && !slices.Contains(f.Enum, s) {
			return nil, violation(path, "%q is not one of %v", s, f.Enum)
		}
		return s, nil
	case Number, Integer:
		n, ok := toFloat(v)
		if !ok {
			return nil, violation(path, "want number, got %T", v)
		}
		if f.Kind == Integer && n != math.Trunc(n) {
			return nil, violation(path, "want integer, got %v", n)
		}
		return n, nil
	case Bool:
		if _, ok := v.(bool); !ok {
			return nil, violation(path, "want bool, got %T", v)
		}
		return v, nil
	case List:
		items, ok := v.([]any)
		if !ok {
			return nil, violation(path, "want list, got %T", v)
		}
		elem := f.Elem
		if elem == nil {
			elem = &Field{Kind: String}
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			norm, err := validateValue(fmt.Sprintf("%s/%d", path, i), elem, item)
			if err != nil {
				return nil, err
			}
			out = append(out, norm)
		}
		return out, nil
	case Object:
		return validateObject(path, f.Fields, v)
	default:
		return v, nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func violation(path, format string, args ...any) error {
	if path == "" {
		path = "/"
	}
	return fmt.Errorf("%w at %s: %s", ErrSchemaViolation, path, fmt.Sprintf(format, args...))
}

func paramsOf(fields []*Field) map[string]*schema.ParameterInfo {
	params := make(map[string]*schema.ParameterInfo, len(fields))
	for _, f := range fields {
		params[f.Name] = paramOf(f)
	}
	return params
}

func paramOf(f *Field) *schema.ParameterInfo {
	p := &schema.ParameterInfo{
		Desc:     f.Description,
		Required: f.Required,
	}
	switch f.Kind {
	case String:
		p.Type = schema.String
	case Enum:
		p.Type = schema.String
		p.Enum = f.Enum
	case Number:
		p.Type = schema.Number
	case Integer:
		p.Type = schema.Integer
	case Bool:
		p.Type = schema.Boolean
	case List:
		p.Type = schema.Array
		elem := f.Elem
		if elem == nil {
			elem = &Field{Kind: String}
		}
		p.ElemInfo = paramOf(elem)
	case Object:
		p.Type = schema.Object
		p.SubParams = paramsOf(f.Fields)
	}
	return p
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
