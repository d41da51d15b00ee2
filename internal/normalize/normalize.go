// Package normalize turns raw text and location names into a canonical form
// so that both sides of a lookup agree on spelling.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps text to its normalized form. Implementations must be pure
// and idempotent.
type Normalizer interface {
	Normalize(s string) string
}

// Func adapts a plain function to the Normalizer interface.
type Func func(string) string

// Normalize calls f(s).
func (f Func) Normalize(s string) string { return f(s) }

// Identity leaves text unchanged. Use it to disable normalization.
type Identity struct{}

// Normalize returns s.
func (Identity) Normalize(s string) string { return s }

// Substitution is a regular expression replacement applied after the
// built-in steps. Replacement may reference groups as $1 or ${name}.
type Substitution struct {
	Pattern     string `koanf:"pattern" json:"pattern"`
	Replacement string `koanf:"replacement" json:"replacement"`
}

// Options selects the steps of a BasicNormalizer.
type Options struct {
	Lowercase      bool
	ToASCII        bool
	RejoinLines    bool
	RemoveHyphens  bool
	RemoveSpecials bool
	Substitutions  []Substitution
	Stemmer        Stemmer
}

// DefaultOptions enables every built-in step except stemming.
func DefaultOptions() Options {
	return Options{
		Lowercase:      true,
		ToASCII:        true,
		RejoinLines:    true,
		RemoveHyphens:  true,
		RemoveSpecials: true,
	}
}

type substitution struct {
	re   *regexp.Regexp
	repl string
}

// BasicNormalizer applies a fixed sequence of normalization steps. It is
// safe for concurrent use.
type BasicNormalizer struct {
	opts          Options
	substitutions []substitution
}

var (
	letterBreak = regexp.MustCompile(`(\pL)-\s*\n\s*`)
	numberBreak = regexp.MustCompile(`(\d-)\s*\n\s*(\d)`)
	wordRun     = regexp.MustCompile(`[\pL\pM-]+`)

	// letters and punctuation without a canonical decomposition
	asciiTable = strings.NewReplacer(
		"ß", "ss", "ẞ", "ss",
		"æ", "ae", "Æ", "AE",
		"œ", "oe", "Œ", "OE",
		"ø", "o", "Ø", "O",
		"ł", "l", "Ł", "L",
		"đ", "d", "Đ", "D",
		"þ", "th", "Þ", "TH",
		"ı", "i",
		"‘", "'", "’", "'", "‚", "'",
		"“", "\"", "”", "\"", "„", "\"",
		"‐", "-", "‑", "-", "–", "-", "—", "-", "−", "-",
		"\u00a0", " ", "\u202f", " ",
	)
)

// New builds a BasicNormalizer. Invalid substitution patterns are reported
// here rather than at normalization time.
func New(opts Options) (*BasicNormalizer, error) {
	subs := make([]substitution, 0, len(opts.Substitutions))
	for _, s := range opts.Substitutions {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid substitution pattern %q: %w", s.Pattern, err)
		}
		subs = append(subs, substitution{re: re, repl: s.Replacement})
	}
	return &BasicNormalizer{opts: opts, substitutions: subs}, nil
}

// MustNew is like New but panics on error.
func MustNew(opts Options) *BasicNormalizer {
	n, err := New(opts)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize implements Normalizer.
func (n *BasicNormalizer) Normalize(s string) string {
	if n.opts.Lowercase {
		s = strings.ToLower(strings.TrimSpace(s))
	}
	if n.opts.ToASCII {
		s = ToASCII(s)
	}
	if n.opts.RejoinLines {
		s = letterBreak.ReplaceAllString(s, "$1")
		s = numberBreak.ReplaceAllString(s, "$1$2")
	}
	if n.opts.RemoveHyphens {
		s = removeHyphens(s)
	}
	if n.opts.RemoveSpecials {
		s = removeSpecials(s)
	}
	for _, sub := range n.substitutions {
		s = sub.re.ReplaceAllString(s, sub.repl)
	}
	if n.opts.Stemmer != nil {
		s = wordRun.ReplaceAllStringFunc(s, n.opts.Stemmer.Stem)
	}
	return strings.Join(strings.Fields(s), " ")
}

// ToASCII strips diacritics and maps letters and punctuation without a
// decomposition to plain equivalents.
func ToASCII(s string) string {
	// transformer chains carry state, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return asciiTable.Replace(out)
}

// removeHyphens drops runs of hyphens that sit directly between two letters.
func removeHyphens(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); {
		if rs[i] != '-' {
			b.WriteRune(rs[i])
			i++
			continue
		}
		j := i
		for j < len(rs) && rs[j] == '-' {
			j++
		}
		between := i > 0 && unicode.IsLetter(rs[i-1]) && j < len(rs) && unicode.IsLetter(rs[j])
		if !between {
			b.WriteString(string(rs[i:j]))
		}
		i = j
	}
	return b.String()
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) && !unicode.IsSpace(r)
}

// removeSpecials replaces each run of special characters with a single
// space unless the run touches a digit.
func removeSpecials(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); {
		if !isSpecial(rs[i]) {
			b.WriteRune(rs[i])
			i++
			continue
		}
		j := i
		for j < len(rs) && isSpecial(rs[j]) {
			j++
		}
		numeric := (i > 0 && unicode.IsDigit(rs[i-1])) || (j < len(rs) && unicode.IsDigit(rs[j]))
		if numeric {
			b.WriteString(string(rs[i:j]))
		} else {
			b.WriteByte(' ')
		}
		i = j
	}
	return b.String()
}
