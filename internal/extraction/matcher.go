package extraction

import (
	"unicode/utf8"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
)

// Match is an occurrence of a pattern. Start and End are rune offsets into
// the searched text.
type Match struct {
	Start   int
	End     int
	Pattern string
}

// Matcher finds all occurrences of a fixed set of patterns, including
// overlapping ones.
type Matcher interface {
	Search(text string) []Match
}

// AhoCorasickMatcher is a Matcher backed by an Aho-Corasick automaton.
// It is immutable and safe for concurrent use.
type AhoCorasickMatcher struct {
	patterns []string
	trie     *ahocorasick.Trie
}

// NewAhoCorasickMatcher builds the automaton for patterns. Empty patterns
// are ignored.
func NewAhoCorasickMatcher(patterns []string) *AhoCorasickMatcher {
	kept := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			kept = append(kept, p)
		}
	}

	m := &AhoCorasickMatcher{patterns: kept}
	if len(kept) > 0 {
		m.trie = ahocorasick.NewTrieBuilder().AddStrings(kept).Build()
	}
	return m
}

// Len returns the number of patterns.
func (m *AhoCorasickMatcher) Len() int {
	return len(m.patterns)
}

// Search implements Matcher.
func (m *AhoCorasickMatcher) Search(text string) []Match {
	if m.trie == nil || text == "" {
		return nil
	}

	found := m.trie.MatchString(text)
	if len(found) == 0 {
		return nil
	}

	offsets := runeOffsets(text)
	out := make([]Match, 0, len(found))
	for _, f := range found {
		idx := int(f.Pattern())
		if idx < 0 || idx >= len(m.patterns) {
			continue
		}
		start := int(f.Pos())
		end := start + len(m.patterns[idx])
		out = append(out, Match{
			Start:   offsets[start],
			End:     offsets[end],
			Pattern: m.patterns[idx],
		})
	}
	return out
}

// runeOffsets maps every byte offset of s (including len(s)) to the number
// of runes before it.
func runeOffsets(s string) []int {
	offsets := make([]int, len(s)+1)
	n := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		for j := 0; j < size; j++ {
			offsets[i+j] = n
		}
		i += size
		n++
	}
	offsets[len(s)] = n
	return offsets
}
