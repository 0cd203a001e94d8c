// Package schema parses template field schemas and validates submitted form data against them.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	helper "github.com/sudoneoox/Picton/internals/helpers"
)

type FieldType string

const (
	TypeText          FieldType = "text"
	TypeEmail         FieldType = "email"
	TypeRadio         FieldType = "radio"
	TypeTextarea      FieldType = "textarea"
	TypeFile          FieldType = "file"
	TypeCheckboxGroup FieldType = "checkboxGroup"
	TypeHidden        FieldType = "hidden"
)

var knownTypes = map[FieldType]bool{
	TypeText: true, TypeEmail: true, TypeRadio: true, TypeTextarea: true,
	TypeFile: true, TypeCheckboxGroup: true, TypeHidden: true,
}

type Subfield struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type Field struct {
	Name      string     `json:"name"`
	Type      FieldType  `json:"type"`
	Required  bool       `json:"required"`
	Label     string     `json:"label"`
	Options   []string   `json:"options,omitempty"`
	Subfields []Subfield `json:"subfields,omitempty"`
}

type Schema struct {
	Fields []Field `json:"fields"`
}

var validate = validator.New()

func malformed(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), helper.ErrMalformedSchema)
}

// Parse rejects anything that is not {"fields": [...]} with named, typed, unique fields.
func Parse(raw []byte) (*Schema, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, malformed("schema is empty")
	}
	var shape map[string]any
	if err := sonic.Unmarshal(raw, &shape); err != nil {
		return nil, malformed("schema is not a JSON object")
	}
	if _, ok := shape["fields"].([]any); !ok {
		return nil, malformed(`schema has no "fields" list`)
	}

	var s Schema
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, malformed("decode fields: %v", err)
	}
	seen := map[string]bool{}
	for i, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, malformed("field %d has no name", i)
		}
		if seen[f.Name] {
			return nil, malformed("field %q declared twice", f.Name)
		}
		seen[f.Name] = true
		if !knownTypes[f.Type] {
			return nil, malformed("field %q has unknown type %q", f.Name, f.Type)
		}
		if f.Type == TypeRadio && len(f.Options) == 0 {
			return nil, malformed("radio field %q has no options", f.Name)
		}
		for _, sf := range f.Subfields {
			if strings.TrimSpace(sf.Name) == "" {
				return nil, malformed("field %q has an unnamed subfield", f.Name)
			}
		}
	}
	return &s, nil
}

// DecodeData reads submitted form data. Empty input is an empty object.
func DecodeData(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(strings.TrimSpace(string(raw))) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return out, nil
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, helper.Invalid("form_data", "must be a JSON object")
	}
	return out, nil
}

// blank reports a missing answer. A JSON false is an answer; a checkbox map
// with nothing ticked is not.
func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		for _, x := range t {
			if b, ok := x.(bool); ok && b {
				return false
			}
			if s, ok := x.(string); ok && strings.TrimSpace(s) != "" {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Validate checks data against the schema in field order and reports the first
// failure as a ValidationError naming the field.
func (s *Schema) Validate(data map[string]any) error {
	for _, f := range s.Fields {
		v, present := data[f.Name]
		if f.Required && (!present || blank(v)) {
			return helper.Invalid(f.Name, "%s is required", f.displayName())
		}
		if !present || blank(v) {
			continue
		}
		switch f.Type {
		case TypeEmail:
			str, _ := v.(string)
			if err := validate.Var(str, "email"); err != nil {
				return helper.Invalid(f.Name, "%s must be a valid email address", f.displayName())
			}
		case TypeRadio:
			str, ok := v.(string)
			if !ok || !contains(f.Options, str) {
				return helper.Invalid(f.Name, "%s must be one of: %s", f.displayName(), strings.Join(f.Options, ", "))
			}
		case TypeCheckboxGroup:
			if err := f.checkGroup(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f Field) displayName() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

// checkGroup accepts a list of option/subfield names or a map of name to bool.
func (f Field) checkGroup(v any) error {
	allowed := append([]string(nil), f.Options...)
	for _, sf := range f.Subfields {
		allowed = append(allowed, sf.Name)
	}
	if len(allowed) == 0 {
		return nil
	}
	var picked []string
	switch t := v.(type) {
	case []any:
		for _, x := range t {
			str, ok := x.(string)
			if !ok {
				return helper.Invalid(f.Name, "%s has a non-text selection", f.displayName())
			}
			picked = append(picked, str)
		}
	case map[string]any:
		for k := range t {
			picked = append(picked, k)
		}
		sort.Strings(picked)
	default:
		return helper.Invalid(f.Name, "%s must be a list of selections", f.displayName())
	}
	for _, p := range picked {
		if !contains(allowed, p) {
			return helper.Invalid(f.Name, "%s has unknown option %q", f.displayName(), p)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
