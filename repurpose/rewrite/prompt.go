// Package rewrite turns a text into a version written for another purpose using a language model,
// and collects what changed.
package rewrite

import (
	"errors"
	"fmt"
	"strings"

	"repurpose.znkr.io/repurpose/purpose"
)

var (
	ErrEmptyText      = errors.New("empty text")
	ErrUnknownPurpose = errors.New("unknown purpose")
	ErrUnknownPreset  = errors.New("unknown preset")
)

// Request describes a rewrite.
type Request struct {
	Text        string  `json:"text"`
	Major       string  `json:"major"`
	Minor       string  `json:"minor"`
	Tone        string  `json:"tone,omitempty"`
	Style       string  `json:"style,omitempty"`
	Audience    string  `json:"audience,omitempty"`
	Persona     string  `json:"persona,omitempty"`
	Length      string  `json:"length,omitempty"`    // Name of a length preset, the first preset if empty
	Intensity   string  `json:"intensity,omitempty"` // Name of an intensity preset, the first preset if empty
	Expand      bool    `json:"expand"`
	Model       string  `json:"model,omitempty"` // The first model of the catalog if empty
	Temperature float64 `json:"temperature"`
}

// Prompt is what is sent to a [Completer].
type Prompt struct {
	Model       string
	System      string
	User        string
	Temperature float64
}

const systemPrompt = "You are a professional text editor specialised in rewriting texts for a purpose. " +
	"Keep every fact of the original and only change how it is expressed, using the register that fits the purpose. " +
	"Strictly distinguish the writing conventions of academic, business, social media and self-introduction texts. " +
	"Do not drop idioms, domain terms or tone that don't fit; replace them with ones that do. " +
	"Keep variety and rhythm in the sentences and don't make them uniform. " +
	"Return only the JSON result without explaining your reasoning."

const expandInstruction = "- In expanded_text, add sentences that strengthen the meaning for the purpose without " +
	"changing the facts of the original. Connect experience to goal or proposal naturally.\n" +
	"- expanded_text may use Markdown. Put a takeaway, call to action or next steps in its own paragraph " +
	"starting with that label and a colon, e.g., \"Takeaway: ...\"."

const replySkeleton = `{
 "rewritten_text": "",
 "expanded_text": "",
 "change_points": [],
 "detected_original_traits": [],
 "suggested_repurposes": []
}`

// BuildPrompt returns the system and user message for req. Empty presets resolve to the first
// preset of the catalog.
func BuildPrompt(cat *purpose.Catalog, req Request) (system, user string, err error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", "", ErrEmptyText
	}
	if cat.Minor(req.Major, req.Minor) == nil {
		return "", "", fmt.Errorf("%w: %s → %s", ErrUnknownPurpose, req.Major, req.Minor)
	}
	length, err := lengthPreset(cat, req.Length)
	if err != nil {
		return "", "", err
	}
	intensity, err := intensityPreset(cat, req.Intensity)
	if err != nil {
		return "", "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Original:\n%s\n\n", req.Text)
	fmt.Fprintf(&sb, "Purpose: %s → %s\n", req.Major, req.Minor)
	fmt.Fprintf(&sb, "Structure: %s\n", cat.Structure(req.Major, req.Minor))
	fmt.Fprintf(&sb, "Edit intensity: %s\n", intensity.Instruction)
	fmt.Fprintf(&sb, "Tone: %s, Style: %s, Audience: %s\n", orAny(req.Tone), orAny(req.Style), orAny(req.Audience))
	if req.Persona != "" {
		fmt.Fprintf(&sb, "Writer: %s\n", req.Persona)
	}
	fmt.Fprintf(&sb, "Length: about %d characters\n", length.Chars)
	if req.Expand {
		sb.WriteString(expandInstruction)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nJSON:\n")
	sb.WriteString(replySkeleton)
	sb.WriteByte('\n')

	return systemPrompt, sb.String(), nil
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func lengthPreset(cat *purpose.Catalog, name string) (purpose.Length, error) {
	if name == "" && len(cat.Lengths) > 0 {
		return cat.Lengths[0], nil
	}
	l, ok := cat.Length(name)
	if !ok {
		return purpose.Length{}, fmt.Errorf("%w: length %q", ErrUnknownPreset, name)
	}
	return l, nil
}

func intensityPreset(cat *purpose.Catalog, name string) (purpose.Intensity, error) {
	if name == "" && len(cat.Intensities) > 0 {
		return cat.Intensities[0], nil
	}
	in, ok := cat.Intensity(name)
	if !ok {
		return purpose.Intensity{}, fmt.Errorf("%w: intensity %q", ErrUnknownPreset, name)
	}
	return in, nil
}
