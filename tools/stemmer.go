package tools

import (
	"context"

	"github.com/cohmetrix/resource-pool/database"
)

// DelafLookup is the part of database.Store the stemmer needs.
type DelafLookup interface {
	DelafWord(ctx context.Context, word, pos string) (*database.DelafWord, error)
}

// DelafStemmer lemmatizes through the DELAF dictionary.
type DelafStemmer struct {
	db DelafLookup
}

var _ Stemmer = (*DelafStemmer)(nil)

func NewDelafStemmer(db DelafLookup) *DelafStemmer {
	return &DelafStemmer{db: db}
}

func (s *DelafStemmer) Lemma(ctx context.Context, word, pos string) (string, bool, error) {
	w, err := s.db.DelafWord(ctx, word, pos)
	if err != nil || w == nil {
		return "", false, err
	}
	return w.Lemma, true, nil
}
