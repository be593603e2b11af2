package tools

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// ListTagSet classifies tags by membership in fixed lists.
type ListTagSet struct {
	Punctuation []string
	Content     []string
	Function    []string
}

var _ TagSet = ListTagSet{}

// MacMorphoTagSet is a reduced MAC-Morpho style tagset for Portuguese.
var MacMorphoTagSet = ListTagSet{
	Punctuation: []string{"PU", "PNT"},
	Content:     []string{"N", "NPROP", "V", "VAUX", "PCP", "ADJ", "ADV"},
	Function:    []string{"ART", "PREP", "KC", "KS", "PROPESS", "PROADJ", "PROSUB", "PRO-KS", "NUM"},
}

func contains(list []string, tag string) bool {
	for _, t := range list {
		if t == tag {
			return true
		}
	}
	return false
}

func (s ListTagSet) IsPunctuation(tok TaggedToken) bool  { return contains(s.Punctuation, tok.Tag) }
func (s ListTagSet) IsContentWord(tok TaggedToken) bool  { return contains(s.Content, tok.Tag) }
func (s ListTagSet) IsFunctionWord(tok TaggedToken) bool { return contains(s.Function, tok.Tag) }

/*
LexiconTagger tags each token by looking it up in a word -> tag lexicon.

Lookups are case-insensitive. Tokens made only of punctuation get
PunctTag, numbers get NumTag, anything else missing from the lexicon
gets DefaultTag.
*/
type LexiconTagger struct {
	lexicon map[string]string
	tagset  TagSet

	DefaultTag string
	PunctTag   string
	NumTag     string
}

var _ Tagger = (*LexiconTagger)(nil)

// NewLexiconTagger creates a tagger over an in-memory lexicon.
func NewLexiconTagger(lexicon map[string]string, tagset TagSet) *LexiconTagger {
	lower := make(map[string]string, len(lexicon))
	for w, tag := range lexicon {
		lower[strings.ToLower(w)] = tag
	}
	return &LexiconTagger{
		lexicon:    lower,
		tagset:     tagset,
		DefaultTag: "N",
		PunctTag:   "PU",
		NumTag:     "NUM",
	}
}

// LoadLexiconTagger reads a lexicon file with one "word<TAB>tag" pair per line.
// Blank lines and lines starting with # are skipped.
func LoadLexiconTagger(path string, tagset TagSet) (*LexiconTagger, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied model path
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon: %w", err)
	}
	defer f.Close()

	lex, err := ReadLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewLexiconTagger(lex, tagset), nil
}

// ReadLexicon parses the lexicon format read by LoadLexiconTagger.
func ReadLexicon(r io.Reader) (map[string]string, error) {
	lex := make(map[string]string)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		word, tag, ok := strings.Cut(text, "\t")
		if !ok || strings.TrimSpace(word) == "" || strings.TrimSpace(tag) == "" {
			return nil, fmt.Errorf("lexicon line %d: want word<TAB>tag", line)
		}
		lex[strings.TrimSpace(word)] = strings.TrimSpace(tag)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lex, nil
}

func (t *LexiconTagger) TagSet() TagSet { return t.tagset }

func (t *LexiconTagger) TagSents(ctx context.Context, sents [][]string) ([][]TaggedToken, error) {
	out := make([][]TaggedToken, len(sents))
	for i, sent := range sents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tagged := make([]TaggedToken, len(sent))
		for j, w := range sent {
			tagged[j] = TaggedToken{Word: w, Tag: t.tag(w)}
		}
		out[i] = tagged
	}
	return out, nil
}

func (t *LexiconTagger) tag(w string) string {
	if tag, ok := t.lexicon[strings.ToLower(w)]; ok {
		return tag
	}
	switch {
	case isAll(w, unicode.IsPunct):
		return t.PunctTag
	case isAll(w, func(r rune) bool { return unicode.IsDigit(r) || r == '.' || r == ',' }):
		return t.NumTag
	}
	return t.DefaultTag
}

func isAll(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}
