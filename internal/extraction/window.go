package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/geoextract/internal/location"
)

// WindowFunc inspects a window of words joined by single spaces and returns
// the locations it recognizes in it.
type WindowFunc func(window string) []location.Location

// WindowExtractor slides windows of MinWords to MaxWords words over the text
// and reports every location its function recognizes. Windows are visited by
// increasing width, then from left to right.
type WindowExtractor struct {
	minWords int
	maxWords int
	fn       WindowFunc
}

// NewWindowExtractor validates the window sizes and returns an extractor.
func NewWindowExtractor(minWords, maxWords int, fn WindowFunc) (*WindowExtractor, error) {
	if err := validateWindow(minWords, maxWords); err != nil {
		return nil, err
	}
	return &WindowExtractor{minWords: minWords, maxWords: maxWords, fn: fn}, nil
}

// Extract implements Extractor.
func (e *WindowExtractor) Extract(text string) []Candidate {
	if e.fn == nil {
		return nil
	}
	var out []Candidate
	eachWindow(text, e.minWords, e.maxWords, func(start int, window string) {
		length := utf8.RuneCountInString(window)
		for _, loc := range e.fn(window) {
			out = append(out, Candidate{Start: start, Length: length, Attrs: loc})
		}
	})
	return out
}

type word struct {
	text  string
	start int
}

// words splits text on whitespace runs and records the rune offset of each
// word.
func words(text string) []word {
	var out []word
	begin, beginRune := -1, 0
	pos := 0
	for i, r := range text {
		if unicode.IsSpace(r) {
			if begin >= 0 {
				out = append(out, word{text: text[begin:i], start: beginRune})
				begin = -1
			}
		} else if begin < 0 {
			begin, beginRune = i, pos
		}
		pos++
	}
	if begin >= 0 {
		out = append(out, word{text: text[begin:], start: beginRune})
	}
	return out
}

func eachWindow(text string, minWords, maxWords int, visit func(start int, window string)) {
	ws := words(text)
	parts := make([]string, 0, maxWords)
	for size := minWords; size <= maxWords && size <= len(ws); size++ {
		for i := 0; i+size <= len(ws); i++ {
			parts = parts[:0]
			for _, w := range ws[i : i+size] {
				parts = append(parts, w.text)
			}
			visit(ws[i].start, strings.Join(parts, " "))
		}
	}
}

var _ Extractor = (*WindowExtractor)(nil)
