package rewrite

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"repurpose.znkr.io/repurpose/highlight"
	"repurpose.znkr.io/repurpose/purpose"
)

const (
	defaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.5
)

// Service rewrites texts for the purposes of a catalog.
type Service struct {
	Catalog   *purpose.Catalog
	Completer Completer
	Highlight []highlight.Option // Options for comparing the original and the rewritten text
}

// Result is the outcome of a rewrite.
type Result struct {
	Request      Request              `json:"request"`
	Rewritten    string               `json:"rewritten_text"`
	Expanded     string               `json:"expanded_text,omitempty"` // Only set if the request asked for it
	ChangePoints []string             `json:"change_points"`
	Traits       []string             `json:"detected_original_traits,omitempty"`
	Suggestions  []purpose.Suggestion `json:"suggested_repurposes"`
	Spans        []highlight.Span     `json:"spans"`
	Similarity   float64              `json:"similarity"`
	Score        int                  `json:"score"`
	Raw          string               `json:"raw"`
}

// Rewrite asks the model to rewrite req.Text. Change points and suggestions the model didn't
// provide are derived from the texts and the catalog.
func (s *Service) Rewrite(ctx context.Context, req Request) (*Result, error) {
	system, user, err := BuildPrompt(s.Catalog, req)
	if err != nil {
		return nil, err
	}
	p := Prompt{
		Model:       req.Model,
		System:      system,
		User:        user,
		Temperature: req.Temperature,
	}
	if p.Model == "" {
		p.Model = defaultModel
		if len(s.Catalog.Models) > 0 {
			p.Model = s.Catalog.Models[0]
		}
	}

	raw, err := s.Completer.Complete(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("rewriting: %w", err)
	}
	reply, err := ParseReply(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing reply: %w", err)
	}

	c := highlight.Compare(req.Text, reply.RewrittenText, s.Highlight...)
	res := &Result{
		Request:      req,
		Rewritten:    reply.RewrittenText,
		ChangePoints: reply.ChangePoints,
		Traits:       reply.OriginalTraits,
		Suggestions:  reply.Suggestions,
		Spans:        c.Spans,
		Similarity:   c.Similarity(),
		Score:        Score(reply.RewrittenText),
		Raw:          raw,
	}
	if req.Expand {
		res.Expanded = reply.ExpandedText
	}
	if len(res.ChangePoints) == 0 {
		res.ChangePoints = ChangePoints(req.Text, reply.RewrittenText)
	}
	if len(res.Suggestions) == 0 {
		res.Suggestions = s.Catalog.Suggestions(req.Major, req.Minor)
	}
	return res, nil
}

// ChangePoints describes the changes between original and rewritten in a few notes. It returns nil
// if either text is blank.
func ChangePoints(original, rewritten string) []string {
	if strings.TrimSpace(original) == "" || strings.TrimSpace(rewritten) == "" {
		return nil
	}

	var points []string
	delta := utf8.RuneCountInString(rewritten) - utf8.RuneCountInString(original)
	switch {
	case delta >= 50:
		points = append(points, fmt.Sprintf("The text was expanded by about %d characters.", delta))
	case delta <= -50:
		points = append(points, fmt.Sprintf("The text was shortened by about %d characters.", -delta))
	}
	if nonBlankLines(original) != nonBlankLines(rewritten) {
		points = append(points, "The sentences were rearranged to improve the flow.")
	}
	if len(points) == 0 {
		points = append(points, "The key expressions were kept while the sentences were polished.")
	}
	return points
}

func nonBlankLines(s string) int {
	n := 0
	for line := range strings.Lines(s) {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// Score is a rough quality score out of 100 that grows with the length of the rewritten text.
func Score(rewritten string) int {
	return min(95, 60+utf8.RuneCountInString(rewritten)/200)
}
