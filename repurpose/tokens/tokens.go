// Package tokens splits text into the units that are compared when diffing two versions of a text.
package tokens

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
)

// Func splits a text into tokens.
type Func func(text string) []string

// Split splits text into maximal runs of word characters and single characters that are neither
// word characters nor whitespace. Whitespace is dropped.
//
// Word characters are Unicode letters, marks, numbers and the underscore, so words in non-Latin
// scripts stay intact. Bytes that are not valid UTF-8 are returned as single-byte tokens.
func Split(text string) []string {
	var toks []string
	start := -1
	for pos := 0; pos < len(text); {
		r, w := utf8.DecodeRuneInString(text[pos:])
		if r != utf8.RuneError && isWord(r) {
			if start < 0 {
				start = pos
			}
			pos += w
			continue
		}
		if start >= 0 {
			toks = append(toks, text[start:pos])
			start = -1
		}
		if !unicode.IsSpace(r) {
			toks = append(toks, text[pos:pos+w])
		}
		pos += w
	}
	if start >= 0 {
		toks = append(toks, text[start:])
	}
	return toks
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

// Segment splits text at word boundaries as defined by Unicode Standard Annex #29. Segments that
// consist only of whitespace are dropped.
//
// Unlike [Split], contractions and decimal numbers ("don't", "3.14") are kept as one token.
func Segment(text string) []string {
	var toks []string
	seg := words.FromString(text)
	for seg.Next() {
		v := seg.Value()
		if strings.TrimSpace(v) == "" {
			continue
		}
		toks = append(toks, v)
	}
	return toks
}

// Names of the available tokenizers.
const (
	NameSplit = "split"
	NameUAX29 = "uax29"
)

// ByName returns the tokenizer registered under name. The empty name selects [Split].
func ByName(name string) (Func, error) {
	switch name {
	case "", NameSplit:
		return Split, nil
	case NameUAX29:
		return Segment, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", name)
	}
}
