package schema

import (
	"errors"
	"testing"

	helper "github.com/sudoneoox/Picton/internals/helpers"
)

const petitionSchema = `{"fields":[
	{"name":"student_name","type":"text","required":true,"label":"Student Name"},
	{"name":"email","type":"email","required":false,"label":"Email"},
	{"name":"petition_type","type":"radio","required":true,"label":"Petition Type","options":["Add","Drop","Other"]},
	{"name":"reasons","type":"checkboxGroup","required":false,"label":"Reasons","subfields":[{"name":"medical","label":"Medical"},{"name":"work","label":"Work"}]},
	{"name":"explanation","type":"textarea","required":true,"label":"Explanation"},
	{"name":"unit","type":"hidden","required":false,"label":"Unit"}
]}`

func TestParseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"null":           `null`,
		"array":          `[]`,
		"no fields":      `{"title":"x"}`,
		"fields object":  `{"fields":{}}`,
		"unnamed":        `{"fields":[{"type":"text"}]}`,
		"unknown type":   `{"fields":[{"name":"a","type":"date"}]}`,
		"duplicate":      `{"fields":[{"name":"a","type":"text"},{"name":"a","type":"text"}]}`,
		"radio no opts":  `{"fields":[{"name":"a","type":"radio"}]}`,
		"bad subfield":   `{"fields":[{"name":"a","type":"checkboxGroup","subfields":[{"label":"x"}]}]}`,
		"not json":       `{fields:`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); !errors.Is(err, helper.ErrMalformedSchema) {
				t.Fatalf("Parse(%q) err = %v, want ErrMalformedSchema", raw, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s, err := Parse([]byte(petitionSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	valid := func() map[string]any {
		return map[string]any{
			"student_name":  "Ana Cruz",
			"petition_type": "Drop",
			"explanation":   "Medical leave",
			"reasons":       map[string]any{"medical": true},
		}
	}

	if err := s.Validate(valid()); err != nil {
		t.Fatalf("valid data rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing required", func(m map[string]any) { delete(m, "student_name") }, "student_name"},
		{"blank required", func(m map[string]any) { m["explanation"] = "   " }, "explanation"},
		{"radio outside options", func(m map[string]any) { m["petition_type"] = "Swap" }, "petition_type"},
		{"bad email", func(m map[string]any) { m["email"] = "not-an-email" }, "email"},
		{"unknown checkbox", func(m map[string]any) { m["reasons"] = []any{"medical", "vacation"} }, "reasons"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := valid()
			tc.mutate(data)
			err := s.Validate(data)
			var ve *helper.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("err = %v, want validation error on %s", err, tc.field)
			}
		})
	}
}

func TestRequiredBooleanAcceptsFalse(t *testing.T) {
	s, err := Parse([]byte(`{"fields":[
		{"name":"enrolled","type":"hidden","required":true,"label":"Currently enrolled"},
		{"name":"reasons","type":"checkboxGroup","required":true,"subfields":[{"name":"medical","label":"Medical"}]}
	]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := s.Validate(map[string]any{"enrolled": false, "reasons": map[string]any{"medical": true}}); err != nil {
		t.Fatalf("false answer rejected: %v", err)
	}
	err = s.Validate(map[string]any{"enrolled": true, "reasons": map[string]any{"medical": false}})
	var ve *helper.ValidationError
	if !errors.As(err, &ve) || ve.Field != "reasons" {
		t.Fatalf("err = %v, want reasons required", err)
	}
}

func TestDecodeData(t *testing.T) {
	m, err := DecodeData([]byte(`{"unit":"CS","n":1}`))
	if err != nil || m["unit"] != "CS" {
		t.Fatalf("DecodeData = %v, %v", m, err)
	}
	if m, err := DecodeData(nil); err != nil || len(m) != 0 {
		t.Fatalf("DecodeData(nil) = %v, %v", m, err)
	}
	if _, err := DecodeData([]byte(`[1,2]`)); !helper.IsValidation(err) {
		t.Fatalf("DecodeData(array) err = %v", err)
	}
}
