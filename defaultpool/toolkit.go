package defaultpool

import (
	"context"

	"github.com/cohmetrix/resource-pool/config"
	"github.com/cohmetrix/resource-pool/database"
	"github.com/cohmetrix/resource-pool/tools"
)

/*
FromConfig builds a Toolkit from configured model paths.

The POS tagger is a lexicon tagger when a lexicon is configured; the
database, LSA space and language model are opened lazily by the pool.
Parsers have no file-based implementation and are left unset: callers that
run an external parser set Parser and DepParser on the result.
*/
func FromConfig(tc config.ToolsConfig, db database.Options) (Toolkit, error) {
	var tk Toolkit

	if tc.LexiconPath != "" {
		tagger, err := tools.LoadLexiconTagger(tc.LexiconPath, tools.MacMorphoTagSet)
		if err != nil {
			return Toolkit{}, err
		}
		tk.PosTagger = tagger
		tk.UnivPosTagger = tagger
	}

	tk.OpenDatabase = func(ctx context.Context) (database.Store, error) {
		h, err := database.Open(ctx, db)
		if err != nil {
			return nil, err
		}
		return h, nil
	}

	if path := tc.LsaVectorsPath; path != "" {
		tk.LoadLsaSpace = func(context.Context) (*tools.LsaSpace, error) {
			return tools.LoadLsaSpace(path)
		}
	}

	if path := tc.LanguageModelPath; path != "" {
		tk.LoadLanguageModel = func(context.Context) (tools.LanguageModel, error) {
			m, err := tools.LoadArpaModel(path)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}

	return tk, nil
}
