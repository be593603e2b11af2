package tools

import (
	"regexp"
	"strings"
)

// RegexpSplitter ends a sentence after terminal punctuation followed by whitespace.
type RegexpSplitter struct {
	boundary *regexp.Regexp
}

var _ SentenceSplitter = (*RegexpSplitter)(nil)

// NewRegexpSplitter uses pattern to find sentence boundaries. An empty
// pattern selects the default: . ! ? or … followed by whitespace.
func NewRegexpSplitter(pattern string) (*RegexpSplitter, error) {
	if pattern == "" {
		pattern = `[.!?…]+["')\]]*\s+`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexpSplitter{boundary: re}, nil
}

func (s *RegexpSplitter) Split(paragraph string) []string {
	var out []string
	last := 0
	for _, m := range s.boundary.FindAllStringIndex(paragraph, -1) {
		if sent := strings.TrimSpace(paragraph[last:m[1]]); sent != "" {
			out = append(out, sent)
		}
		last = m[1]
	}
	if sent := strings.TrimSpace(paragraph[last:]); sent != "" {
		out = append(out, sent)
	}
	return out
}

// RegexpTokenizer returns every match of its pattern as a token.
type RegexpTokenizer struct {
	token *regexp.Regexp
}

var _ WordTokenizer = (*RegexpTokenizer)(nil)

// NewRegexpTokenizer uses pattern to match tokens. An empty pattern selects
// the default: words with inner hyphens or apostrophes, numbers, and
// single punctuation marks.
func NewRegexpTokenizer(pattern string) (*RegexpTokenizer, error) {
	if pattern == "" {
		pattern = `\p{L}+(?:[-'’]\p{L}+)*|\p{N}+(?:[.,]\p{N}+)*|\.\.\.|[^\s\p{L}\p{N}]`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexpTokenizer{token: re}, nil
}

func (t *RegexpTokenizer) Tokenize(sentence string) []string {
	return t.token.FindAllString(sentence, -1)
}
