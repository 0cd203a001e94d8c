package documents

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sudoneoox/Picton/internals/constants"
)

const petition = `GRADUATE PETITION {{.Identifier}}
Student: {{.Actor.Name}} ({{.Actor.PersonalID}})
{{range $k, $v := .Fields}}{{$k}}: {{$v}}
{{end}}{{with .Decision}}{{.PositionCode}} {{upper (printf "%s" .Decision)}} on {{date .DecidedAt}}{{end}}`

func TestTemplateRendererIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "graduate_petition_form.tmpl"), []byte(petition), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewTemplateRenderer(dir)
	req := RenderRequest{
		TemplatePath: "graduate_petition_form.tmpl",
		Identifier:   "FRM-3-1-20260301-abcdef12",
		Actor:        Person{ID: 3, Name: "Ana Cruz", PersonalID: "1234567"},
		Fields:       map[string]any{"b": "second", "a": "first", "c": 3},
		Decision: &DecisionContext{
			Decision:     constants.DecisionApproved,
			PositionCode: PositionCode("Department Chair"),
			DecidedAt:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	first, err := r.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Render(context.Background(), req)
		if err != nil || !bytes.Equal(first, again) {
			t.Fatalf("render %d differs", i)
		}
	}
	out := string(first)
	for _, want := range []string{"FRM-3-1-20260301-abcdef12", "a: first\nb: second\nc: 3", "DEPT_CHAIR APPROVED on March 2, 2026"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTemplateRendererMissingTemplate(t *testing.T) {
	r := NewTemplateRenderer(t.TempDir())
	if _, err := r.Render(context.Background(), RenderRequest{TemplatePath: "nope.tmpl"}); err == nil {
		t.Fatal("expected error for missing template")
	}
	if _, err := r.Render(context.Background(), RenderRequest{}); err == nil {
		t.Fatal("expected error for empty template path")
	}
}

func TestPositionCode(t *testing.T) {
	cases := map[string]string{
		"Graduate Studies Director":               "PROGRAM_DIRECTOR",
		"Program Director":                        "PROGRAM_DIRECTOR",
		"Department Chair":                        "DEPT_CHAIR",
		"Associate Dean for Graduate Studies":     "ASSOC_DEAN",
		"Assistant Dean for Graduate Studies":     "ASSOC_DEAN",
		"Vice Provost/Dean of the Graduate School": "VICE_PROVOST",
		"Graduate Advisor":                        "STAFF",
	}
	for in, want := range cases {
		if got := PositionCode(in); got != want {
			t.Errorf("PositionCode(%q) = %q, want %q", in, got, want)
		}
	}
}
