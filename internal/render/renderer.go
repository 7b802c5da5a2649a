// Package render turns a NamespaceGroup into the PHP stub document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/fmacia/subclass-ide-helper/internal/generator"
)

// DefaultTemplate is the name of the embedded stub template.
const DefaultTemplate = "subclass-ide-helper.php.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data is the value handed to the template. Templates address the grouped
// classes as .Namespaces, in first-seen order.
type Data struct {
	Namespaces []*generator.Namespace
}

// Renderer renders stub documents from a single parsed template.
type Renderer struct {
	tmpl *template.Template
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	name string
	text string
	path string
}

// WithTemplateFile renders with a user supplied template file instead of
// the embedded one.
func WithTemplateFile(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithTemplateText renders with an in-memory template.
func WithTemplateText(name, text string) Option {
	return func(c *config) {
		c.name = name
		c.text = text
	}
}

// New parses the configured template. The template gets the sprig text
// function map.
func New(opts ...Option) (*Renderer, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	name, text, err := cfg.source()
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

func (c *config) source() (string, string, error) {
	switch {
	case c.text != "":
		return c.name, c.text, nil
	case c.path != "":
		content, err := os.ReadFile(c.path)
		if err != nil {
			return "", "", fmt.Errorf("failed to read template: %w", err)
		}
		return filepath.Base(c.path), string(content), nil
	default:
		content, err := templateFS.ReadFile("templates/" + DefaultTemplate)
		if err != nil {
			return "", "", fmt.Errorf("failed to read embedded template: %w", err)
		}
		return DefaultTemplate, string(content), nil
	}
}

// Render executes the template for group. Output is byte-identical for
// identical groups.
func (r *Renderer) Render(group *generator.NamespaceGroup) ([]byte, error) {
	data := Data{}
	if group != nil {
		data.Namespaces = group.Namespaces
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", r.tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}
