package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"repurpose.znkr.io/repurpose/highlight"
	"repurpose.znkr.io/repurpose/purpose"
	"repurpose.znkr.io/repurpose/rewrite"
)

//go:embed templates
var templateFS embed.FS

type choice struct {
	Name, Label string
	Options     []string
	Value       string
}

var funcs = template.FuncMap{
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"choice": func(name, label string, options []string, value string) choice {
		return choice{name, label, options, value}
	},
}

// loadTemplates parses all templates, each named by its path below templates/ without the .html
// extension, e.g., "fragments/head".
func loadTemplates() (*template.Template, error) {
	const dir = "templates"
	root := template.New("").Funcs(funcs)
	err := fs.WalkDir(templateFS, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".html") {
			return err
		}

		b, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}

		t := root.New(path[len(dir)+1 : len(path)-len(".html")])
		if _, err = t.Parse(string(b)); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %v", err)
	}
	return root, nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

// page is the data passed to all page templates.
type page struct {
	Title   string
	Catalog *purpose.Catalog
	Form    rewrite.Request
	Error   string

	Result   *rewrite.Result
	Diff     template.HTML // Highlighted changes
	Expanded template.HTML // Expanded text rendered from markdown
	Contents template.HTML // Table of contents of the expanded text, if it has enough headings
	Raw      template.HTML // Highlighted model reply

	Comparison *highlight.Comparison
}

type renderer struct {
	templates *template.Template
	minifier  *minify.M
}

func newRenderer() (*renderer, error) {
	t, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &renderer{templates: t, minifier: newMinifier()}, nil
}

func (r *renderer) render(name string, p *page) ([]byte, error) {
	t := r.templates.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template not found %s", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("rendering template: %v", err)
	}

	b, err := r.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minifying %s: %v", name, err)
	}
	return b, nil
}

// DiffPage renders a standalone HTML page showing the comparison.
func DiffPage(title string, c *highlight.Comparison) ([]byte, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return r.render("diff", &page{
		Title:      title,
		Diff:       highlight.HTML(c.Spans),
		Comparison: c,
	})
}
