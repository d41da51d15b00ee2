package normalize

import (
	"errors"
	"fmt"

	"github.com/kljensen/snowball"
)

// ErrUnknownLanguage is returned for stemming languages snowball does not
// support.
var ErrUnknownLanguage = errors.New("unsupported stemming language")

// Stemmer reduces a word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// SnowballStemmer stems words with the Snowball algorithm for one language.
type SnowballStemmer struct {
	language string
}

// NewSnowballStemmer returns a stemmer for language, e.g. "english" or
// "spanish".
func NewSnowballStemmer(language string) (*SnowballStemmer, error) {
	if _, err := snowball.Stem("probe", language, true); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownLanguage, language, err)
	}
	return &SnowballStemmer{language: language}, nil
}

// Language returns the configured language.
func (s *SnowballStemmer) Language() string { return s.language }

// Stem implements Stemmer. Words snowball rejects are returned unchanged.
func (s *SnowballStemmer) Stem(word string) string {
	stemmed, err := snowball.Stem(word, s.language, true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
