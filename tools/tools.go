/*
Package tools defines the NLP tools that resource hooks call into, and small
reference implementations of each: regexp sentence splitting and
tokenization, a lexicon tagger, bracketed constituency trees, CoNLL
dependency graphs, a DELAF stemmer, an LSA word-vector space and an ARPA
language model.

Tools are process-wide and shared between goroutines: every implementation
here is safe for concurrent use once constructed.
*/
package tools

import "context"

// SentenceSplitter splits a paragraph into sentences.
type SentenceSplitter interface {
	Split(paragraph string) []string
}

// WordTokenizer splits a sentence into tokens.
type WordTokenizer interface {
	Tokenize(sentence string) []string
}

// TaggedToken is a token and its part-of-speech tag.
type TaggedToken struct {
	Word string
	Tag  string
}

// Tagger assigns part-of-speech tags to tokenized sentences.
type Tagger interface {
	TagSents(ctx context.Context, sents [][]string) ([][]TaggedToken, error)
	TagSet() TagSet
}

// TagSet classifies the tags a Tagger produces.
type TagSet interface {
	IsPunctuation(tok TaggedToken) bool
	IsContentWord(tok TaggedToken) bool
	IsFunctionWord(tok TaggedToken) bool
}

// Parser builds one constituency tree per sentence.
type Parser interface {
	ParseSents(ctx context.Context, sents []string) ([]*Tree, error)
}

// DependencyParser builds one dependency graph per tokenized sentence.
type DependencyParser interface {
	ParseSents(ctx context.Context, sents [][]string) ([]*DepGraph, error)
}

// Stemmer maps a word to its lemma. ok is false when the word is unknown.
type Stemmer interface {
	Lemma(ctx context.Context, word, pos string) (lemma string, ok bool, err error)
}

// LanguageModel scores sentences.
type LanguageModel interface {
	// Score returns the log10 probability of a whitespace-tokenized sentence,
	// including the sentence boundary markers.
	Score(sentence string) float64
}
