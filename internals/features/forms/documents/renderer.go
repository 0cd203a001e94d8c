// Package documents renders submission and approval documents from text templates.
package documents

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/sudoneoox/Picton/internals/constants"
)

type Person struct {
	ID         uint
	Name       string
	Email      string
	PersonalID string
}

// DecisionContext is present when an approver signs a document.
type DecisionContext struct {
	Decision     constants.Decision
	Position     string
	PositionCode string
	Comments     string
	SignatureURL string
	Step         int
	DecidedAt    time.Time
}

type RenderRequest struct {
	TemplatePath string
	Identifier   string
	Actor        Person
	Fields       map[string]any
	Decision     *DecisionContext
}

// Renderer must return identical bytes for identical requests.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// TemplateRenderer executes text/template files below Dir. Parsed templates are cached.
type TemplateRenderer struct {
	Dir string

	mu    sync.RWMutex
	cache map[string]*template.Template
}

func NewTemplateRenderer(dir string) *TemplateRenderer {
	return &TemplateRenderer{Dir: dir, cache: map[string]*template.Template{}}
}

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"field": func(fields map[string]any, name string) string {
		v, ok := fields[name]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	},
}

func (r *TemplateRenderer) load(name string) (*template.Template, error) {
	clean := filepath.Clean("/" + name)
	if clean == "/" {
		return nil, fmt.Errorf("empty template path")
	}

	r.mu.RLock()
	t, ok := r.cache[clean]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	raw, err := os.ReadFile(filepath.Join(r.Dir, clean))
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	t, err = template.New(filepath.Base(clean)).Funcs(funcs).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	r.mu.Lock()
	r.cache[clean] = t
	r.mu.Unlock()
	return t, nil
}

func (r *TemplateRenderer) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := r.load(req.TemplatePath)
	if err != nil {
		return nil, err
	}
	if req.Fields == nil {
		req.Fields = map[string]any{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, req); err != nil {
		return nil, fmt.Errorf("render %s: %w", req.TemplatePath, err)
	}
	return buf.Bytes(), nil
}
