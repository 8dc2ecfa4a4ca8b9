package highlight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

var style = map[chroma.TokenType]string{
	chroma.NameTag:         "hl-b",
	chroma.Keyword:         "hl-b",
	chroma.KeywordConstant: "hl-bl",
	chroma.LiteralString:   "hl-i",
	chroma.LiteralNumber:   "hl-bl",
	chroma.Comment:         "hl-ii",
	chroma.Error:           "hl-err",
}

// JSON renders a model reply as highlighted HTML. Valid JSON is indented first, anything else is
// highlighted as is.
func JSON(raw string) (template.HTML, error) {
	in := raw
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err == nil {
		in = buf.String()
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, in)
	if err != nil {
		return "", fmt.Errorf("creating iterator: %v", err)
	}

	var sb strings.Builder
	for _, token := range it.Tokens() {
		class := class(token.Type)
		if class != "" {
			fmt.Fprintf(&sb, "<span class=\"%s\">", class)
		}
		sb.WriteString(html.EscapeString(token.Value))
		if class != "" {
			sb.WriteString("</span>")
		}
	}
	return template.HTML(sb.String()), nil
}

func class(t chroma.TokenType) string {
	s, ok := style[t]
	if ok {
		return s
	}
	s, ok = style[t.SubCategory()]
	if ok {
		return s
	}
	s, ok = style[t.Category()]
	if ok {
		return s
	}
	return ""
}
