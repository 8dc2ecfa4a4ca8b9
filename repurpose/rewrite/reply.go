package rewrite

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"repurpose.znkr.io/repurpose/purpose"
)

var ErrNoJSON = errors.New("reply contains no JSON object")

// Reply is the parsed answer of the model. Missing fields are empty.
type Reply struct {
	RewrittenText  string               `json:"rewritten_text"`
	ExpandedText   string               `json:"expanded_text,omitempty"`
	ChangePoints   []string             `json:"change_points,omitempty"`
	OriginalTraits []string             `json:"detected_original_traits,omitempty"`
	Suggestions    []purpose.Suggestion `json:"suggested_repurposes,omitempty"`
}

// Models like to wrap the object in prose or code fences, the outermost braces delimit it.
var object = regexp.MustCompile(`(?s)\{.*\}`)

// ParseReply extracts the reply from raw. raw is either a JSON object or contains one.
//
// Fields are read leniently: a list field may be a single string, and a suggestion may be an object
// with major_purpose and minor_purpose or a plain string.
func ParseReply(raw string) (Reply, error) {
	js := strings.TrimSpace(raw)
	if !gjson.Valid(js) || !gjson.Parse(js).IsObject() {
		js = object.FindString(raw)
		if js == "" || !gjson.Valid(js) {
			return Reply{}, ErrNoJSON
		}
	}

	res := gjson.Parse(js)
	r := Reply{
		RewrittenText:  text(res.Get("rewritten_text")),
		ExpandedText:   text(res.Get("expanded_text")),
		ChangePoints:   list(res.Get("change_points")),
		OriginalTraits: list(res.Get("detected_original_traits")),
	}
	for _, s := range values(res.Get("suggested_repurposes")) {
		switch {
		case s.IsObject():
			r.Suggestions = append(r.Suggestions, purpose.Suggestion{
				Major: or(text(s.Get("major_purpose")), "Other"),
				Minor: or(text(s.Get("minor_purpose")), "Suggested"),
			})
		case text(s) != "":
			r.Suggestions = append(r.Suggestions, purpose.Suggestion{Minor: text(s)})
		}
	}
	return r, nil
}

func text(v gjson.Result) string {
	if v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

func values(v gjson.Result) []gjson.Result {
	switch {
	case !v.Exists():
		return nil
	case v.IsArray():
		return v.Array()
	default:
		return []gjson.Result{v}
	}
}

func list(v gjson.Result) []string {
	var ret []string
	for _, e := range values(v) {
		if s := text(e); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
