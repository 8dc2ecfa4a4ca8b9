// Package markdown renders text written by the model, e.g., the expanded text, as HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.Footnote,
		Callouts,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Render converts markdown to HTML. Raw HTML in the input is omitted.
//
// If the text has at least two headings, e.g., a blog post with subheadings, Render also returns a
// table of contents as a nested list linking to the heading IDs. Otherwise, the table of contents
// is nil.
func Render(data []byte) (body, contents []byte, err error) {
	root := md.Parser().Parse(text.NewReader(data))

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, data, root); err != nil {
		return nil, nil, fmt.Errorf("rendering markdown: %v", err)
	}
	body = bytes.Clone(buf.Bytes())

	if countHeadings(root) < 2 {
		return body, nil, nil
	}

	tree, err := toc.Inspect(root, data)
	if err != nil {
		return nil, nil, fmt.Errorf("inspecting headings: %v", err)
	}
	list := toc.RenderList(tree)
	if list == nil {
		return body, nil, nil
	}

	buf.Reset()
	if err := md.Renderer().Render(&buf, data, list); err != nil {
		return nil, nil, fmt.Errorf("rendering table of contents: %v", err)
	}
	return body, buf.Bytes(), nil
}

func countHeadings(root ast.Node) int {
	n := 0
	ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if _, ok := node.(*ast.Heading); ok && entering {
			n++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return n
}
