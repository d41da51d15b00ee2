// Package document turns uploaded bytes into the plain text the pipeline
// works on.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Input formats.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// ErrNotUTF8 is returned for input that is not valid UTF-8.
var ErrNotUTF8 = errors.New("data must be encoded as UTF-8")

// ErrUnknownFormat is returned for formats other than text and html.
var ErrUnknownFormat = errors.New("unknown document format")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Decode validates data as UTF-8 and strips a leading byte order mark.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, bom)
	if !utf8.Valid(data) {
		return "", ErrNotUTF8
	}
	return string(data), nil
}

// Load decodes data and, for HTML, reduces it to its visible text.
func Load(data []byte, format string) (string, error) {
	text, err := Decode(data)
	if err != nil {
		return "", err
	}
	switch format {
	case "", FormatText:
		return text, nil
	case FormatHTML:
		return HTMLText(strings.NewReader(text))
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// skipped elements never contribute text.
var skipped = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// lineBreaks end the current line before and after their content.
var lineBreaks = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

// cells are separated by a gap wide enough to split them into blocks.
var cells = map[string]bool{"td": true, "th": true}

// HTMLText returns the visible text of an HTML document. Block elements
// start new lines and table cells are separated by wide gaps so that the
// whitespace splitter keeps them apart.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(collapseSpaces(n.Data))
			return
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
			if n.Data == "br" {
				b.WriteByte('\n')
				return
			}
			if lineBreaks[n.Data] {
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch {
			case lineBreaks[n.Data]:
				b.WriteByte('\n')
			case cells[n.Data]:
				b.WriteString("    ")
			}
		}
	}
	walk(doc)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

// collapseSpaces maps source line breaks and tabs to spaces. Runs of spaces
// are kept because they carry layout.
func collapseSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', '\f':
			return ' '
		}
		return r
	}, s)
}
