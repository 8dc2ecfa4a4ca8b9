package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Callout wraps a top-level paragraph that opens with one of the section labels the purpose
// structures ask for, e.g., "Takeaway:" for a blog post or "Call to action:" for a caption.
type Callout struct {
	ast.BaseBlock
	Label string
}

var KindCallout = ast.NewNodeKind("Callout")

func (n *Callout) Kind() ast.NodeKind { return KindCallout }

func (n *Callout) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": n.Label}, nil)
}

// Labels that turn a paragraph into a callout, keyed by their lower case spelling.
var calloutLabels = map[string]string{
	"takeaway":       "Takeaway",
	"key point":      "Key point",
	"call to action": "Call to action",
	"next steps":     "Next steps",
	"action items":   "Action items",
	"note":           "Note",
}

var calloutLabel = regexp.MustCompile(`(?i)^(takeaway|key point|call to action|next steps|action items|note):[ \t]*`)

// Callouts is an extension that renders labelled paragraphs as
//
//	<div class="callout call-to-action"><p class="callout-title">Call to action</p><p>...</p></div>
//
// The label may be plain or strong, "Takeaway: ..." and "**Takeaway:** ..." are both recognized.
var Callouts goldmark.Extender = &callouts{}

type callouts struct{}

func (e *callouts) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(calloutTransformer{}, 500),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(calloutRenderer{}, 500),
		),
	)
}

type calloutTransformer struct{}

func (calloutTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	for n := doc.FirstChild(); n != nil; {
		next := n.NextSibling()
		if p, ok := n.(*ast.Paragraph); ok {
			if label, ok := cutLabel(p, source); ok {
				c := &Callout{Label: label}
				doc.ReplaceChild(doc, p, c)
				c.AppendChild(c, p)
			}
		}
		n = next
	}
}

// cutLabel removes a leading label from p and returns it.
func cutLabel(p *ast.Paragraph, source []byte) (string, bool) {
	switch first := p.FirstChild().(type) {
	case *ast.Text:
		m := calloutLabel.FindSubmatch(first.Segment.Value(source))
		if m == nil {
			return "", false
		}
		first.Segment = first.Segment.WithStart(first.Segment.Start + len(m[0]))
		return calloutLabels[strings.ToLower(string(m[1]))], true

	case *ast.Emphasis:
		t, ok := first.FirstChild().(*ast.Text)
		if first.Level != 2 || !ok || first.ChildCount() != 1 {
			return "", false
		}
		v := t.Segment.Value(source)
		m := calloutLabel.FindSubmatch(v)
		if m == nil || len(m[0]) != len(v) {
			return "", false
		}
		p.RemoveChild(p, first)
		if rest, ok := p.FirstChild().(*ast.Text); ok {
			rest.Segment = rest.Segment.TrimLeftSpace(source)
		}
		return calloutLabels[strings.ToLower(string(m[1]))], true
	}
	return "", false
}

type calloutRenderer struct{}

func (r calloutRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCallout, r.render)
}

func (r calloutRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Callout)
	if !entering {
		w.WriteString("</div>\n")
		return ast.WalkContinue, nil
	}
	class := strings.ReplaceAll(strings.ToLower(n.Label), " ", "-")
	fmt.Fprintf(w, `<div class="callout %s"><p class="callout-title">%s</p>`, class, html.EscapeString(n.Label))
	return ast.WalkContinue, nil
}
