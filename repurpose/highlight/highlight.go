// Package highlight compares two versions of a text word by word and renders the changes.
package highlight

import (
	"html"
	"html/template"
	"strings"

	"repurpose.znkr.io/repurpose/diff"
	"repurpose.znkr.io/repurpose/tokens"
)

// Span is a run of tokens that share the same edit operation.
//
// Equal, Insert and Replace spans hold tokens of the revised text, Delete spans hold tokens of the
// original text.
type Span struct {
	Op     diff.Op  `json:"op"`
	Tokens []string `json:"tokens"`
}

// Text returns the tokens of the span joined by spaces, see [HTML] for the spacing rules.
func (s Span) Text() string {
	var sb strings.Builder
	prev := ""
	for i, tok := range s.Tokens {
		if i > 0 && spaceBetween(prev, tok) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
		prev = tok
	}
	return sb.String()
}

type Option func(*highlighter)

// WithTokenizer sets the function used to split both texts into tokens. The default is
// [tokens.Split].
func WithTokenizer(f tokens.Func) Option {
	return func(hl *highlighter) {
		if f != nil {
			hl.tokenize = f
		}
	}
}

// WithDiffOptions sets the options for aligning the token sequences.
func WithDiffOptions(opts ...diff.Option) Option {
	return func(hl *highlighter) {
		hl.diffOpts = append(hl.diffOpts, opts...)
	}
}

// Comparison is the result of comparing two texts.
type Comparison struct {
	Original []string      // Tokens of the original text
	Revised  []string      // Tokens of the revised text
	Opcodes  []diff.Opcode // Alignment of Original and Revised
	Spans    []Span        // One span per opcode
}

// Similarity returns the similarity of both texts, see [diff.Similarity].
func (c *Comparison) Similarity() float64 { return diff.Similarity(c.Opcodes) }

// Compare tokenizes original and revised, aligns the tokens and derives the spans to display.
func Compare(original, revised string, opts ...Option) *Comparison {
	hl := fromOptions(opts)

	a, b := hl.tokenize(original), hl.tokenize(revised)
	ops := diff.Opcodes(a, b, hl.diffOpts...)

	// Span tokens are capped so that appending to them can't overwrite the tokens that follow.
	var spans []Span
	for _, op := range ops {
		switch op.Op {
		case diff.Delete:
			spans = append(spans, Span{op.Op, a[op.I1:op.I2:op.I2]})
		default:
			spans = append(spans, Span{op.Op, b[op.J1:op.J2:op.J2]})
		}
	}
	return &Comparison{
		Original: a,
		Revised:  b,
		Opcodes:  ops,
		Spans:    spans,
	}
}

// Render compares original and revised and returns the spans to display.
func Render(original, revised string, opts ...Option) []Span {
	return Compare(original, revised, opts...).Spans
}

var classes = map[diff.Op]string{
	diff.Insert:  "diff-ins",
	diff.Replace: "diff-rep",
	diff.Delete:  "diff-del",
}

// HTML renders spans as HTML. Changed spans are wrapped in a <span> with the class diff-ins,
// diff-rep or diff-del.
//
// Tokens are separated by a single space, except that there is no space before the punctuation
// characters , . ! ? ) : ; and no space after (.
func HTML(spans []Span) template.HTML {
	var sb strings.Builder
	prev := ""
	first := true
	for _, s := range spans {
		class := classes[s.Op]
		for i, tok := range s.Tokens {
			if !first && spaceBetween(prev, tok) {
				sb.WriteByte(' ')
			}
			if i == 0 && class != "" {
				sb.WriteString(`<span class="`)
				sb.WriteString(class)
				sb.WriteString(`">`)
			}
			sb.WriteString(html.EscapeString(tok))
			prev, first = tok, false
		}
		if class != "" && len(s.Tokens) > 0 {
			sb.WriteString("</span>")
		}
	}
	return template.HTML(sb.String())
}

var markers = map[diff.Op][2]string{
	diff.Insert:  {"{+", "+}"},
	diff.Replace: {"{~", "~}"},
	diff.Delete:  {"[-", "-]"},
}

// Text renders spans as plain text with the changes marked as {+inserted+}, {~replacement~} and
// [-deleted-]. The spacing follows the same rules as [HTML].
func Text(spans []Span) string {
	var sb strings.Builder
	prev := ""
	first := true
	for _, s := range spans {
		m, marked := markers[s.Op]
		for i, tok := range s.Tokens {
			if !first && spaceBetween(prev, tok) {
				sb.WriteByte(' ')
			}
			if i == 0 && marked {
				sb.WriteString(m[0])
			}
			sb.WriteString(tok)
			prev, first = tok, false
		}
		if marked && len(s.Tokens) > 0 {
			sb.WriteString(m[1])
		}
	}
	return sb.String()
}

func spaceBetween(prev, next string) bool {
	switch next {
	case ",", ".", "!", "?", ")", ":", ";":
		return false
	}
	return prev != "("
}

type highlighter struct {
	tokenize tokens.Func
	diffOpts []diff.Option
}

func fromOptions(opts []Option) *highlighter {
	hl := &highlighter{tokenize: tokens.Split}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(hl)
	}
	return hl
}
