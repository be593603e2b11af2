/*
Package defaultpool wires the standard linguistic resources into a pool.

Every text-derived resource takes a *text.Text as its only argument and is
unpinned; tools and the database helper are pinned singletons requested
with no arguments. Values handed out by the pool are shared, so hooks
here build new slices instead of editing the ones they read.
*/
package defaultpool

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	resourcepool "github.com/cohmetrix/resource-pool"
	"github.com/cohmetrix/resource-pool/database"
	"github.com/cohmetrix/resource-pool/text"
	"github.com/cohmetrix/resource-pool/tools"
)

// ErrToolUnavailable is returned by hooks whose tool was not configured.
var ErrToolUnavailable = errors.New("tool unavailable")

// ErrInvalidArgument is returned when a text resource is not given a *text.Text.
var ErrInvalidArgument = errors.New("invalid resource argument")

// Resource names.
const (
	PosTagger     = "pos_tagger"
	UnivPosTagger = "univ_pos_tagger"
	Parser        = "parser"
	DepParser     = "dep_parser"
	Stemmer       = "stemmer"
	DBHelper      = "db_helper"
	LsaSpace      = "lsa_space"
	LanguageModel = "language_model"

	RawContent          = "raw_content"
	RawWords            = "raw_words"
	Paragraphs          = "paragraphs"
	Sentences           = "sentences"
	Tokens              = "tokens"
	AllTokens           = "all_tokens"
	AllWords            = "all_words"
	TaggedSentences     = "tagged_sentences"
	TaggedTokens        = "tagged_tokens"
	TaggedWords         = "tagged_words"
	TaggedWordsInSents  = "tagged_words_in_sents"
	ContentWords        = "content_words"
	StemmedContentWords = "stemmed_content_words"
	CWFreq              = "cw_freq"
	TokenTypes          = "token_types"
	ParseTrees          = "parse_trees"
	DepTrees            = "dep_trees"
	ToplevelNPs         = "toplevel_nps_per_sentence"
	LeavesInToplevelNPs = "leaves_in_toplevel_nps"
)

/*
Toolkit supplies the tools behind the pinned resources.

Nil fields make the matching resource fail with ErrToolUnavailable, except
Splitter and Tokenizer, which fall back to the regexp defaults, and
Stemmer, which falls back to a DELAF stemmer over db_helper. Loaders run at
most once per pool, the first time their resource is requested.
*/
type Toolkit struct {
	Splitter      tools.SentenceSplitter
	Tokenizer     tools.WordTokenizer
	PosTagger     tools.Tagger
	UnivPosTagger tools.Tagger
	Parser        tools.Parser
	DepParser     tools.DependencyParser
	Stemmer       tools.Stemmer

	OpenDatabase      func(ctx context.Context) (database.Store, error)
	LoadLsaSpace      func(ctx context.Context) (*tools.LsaSpace, error)
	LoadLanguageModel func(ctx context.Context) (tools.LanguageModel, error)
}

// New creates a pool and registers the default resources on it.
func New(tk Toolkit, capacity int, opts ...resourcepool.Option) (*resourcepool.Pool, error) {
	p, err := resourcepool.New(capacity, opts...)
	if err != nil {
		return nil, err
	}
	if err := Register(p, tk); err != nil {
		return nil, err
	}
	return p, nil
}

// Register adds the default resources to p.
func Register(p *resourcepool.Pool, tk Toolkit) error {
	if tk.Splitter == nil {
		s, err := tools.NewRegexpSplitter("")
		if err != nil {
			return err
		}
		tk.Splitter = s
	}
	if tk.Tokenizer == nil {
		t, err := tools.NewRegexpTokenizer("")
		if err != nil {
			return err
		}
		tk.Tokenizer = t
	}

	h := &hooks{pool: p, tk: tk}

	regs := []struct {
		name   string
		hook   resourcepool.Hook
		pinned bool
	}{
		// tools and helpers
		{PosTagger, tool(PosTagger, tk.PosTagger), true},
		{UnivPosTagger, tool(UnivPosTagger, tk.UnivPosTagger), true},
		{Parser, tool(Parser, tk.Parser), true},
		{DepParser, tool(DepParser, tk.DepParser), true},
		{Stemmer, h.stemmer, true},
		{DBHelper, loader(DBHelper, tk.OpenDatabase), true},
		{LsaSpace, loader(LsaSpace, tk.LoadLsaSpace), true},
		{LanguageModel, loader(LanguageModel, tk.LoadLanguageModel), true},

		// basic text info
		{RawContent, h.rawContent, false},
		{RawWords, h.rawWords, false},
		{Paragraphs, h.paragraphs, false},
		{Sentences, h.sentences, false},
		{Tokens, h.tokens, false},
		{AllTokens, h.allTokens, false},
		{AllWords, h.allWords, false},
		{TaggedSentences, h.taggedSentences, false},
		{TaggedTokens, h.taggedTokens, false},
		{TaggedWords, h.taggedWords, false},
		{TaggedWordsInSents, h.taggedWordsInSents, false},

		// derived text info
		{ContentWords, h.contentWords, false},
		{StemmedContentWords, h.stemmedContentWords, false},
		{CWFreq, h.cwFreq, false},
		{TokenTypes, h.tokenTypes, false},

		// parse structures
		{ParseTrees, h.parseTrees, false},
		{DepTrees, h.depTrees, false},
		{ToplevelNPs, h.toplevelNPs, false},
		{LeavesInToplevelNPs, h.leavesInToplevelNPs, false},
	}

	for _, r := range regs {
		if err := p.Register(r.name, r.hook, r.pinned); err != nil {
			return fmt.Errorf("register %s: %w", r.name, err)
		}
	}
	return nil
}

func unavailable(name string) error {
	return fmt.Errorf("%w: %s", ErrToolUnavailable, name)
}

// tool returns a hook handing out a ready-made tool.
func tool[T comparable](name string, t T) resourcepool.Hook {
	return func(context.Context, ...any) (any, error) {
		var zero T
		if t == zero {
			return nil, unavailable(name)
		}
		return t, nil
	}
}

// loader returns a hook that builds a tool on first use.
func loader[T any](name string, load func(context.Context) (T, error)) resourcepool.Hook {
	return func(ctx context.Context, _ ...any) (any, error) {
		if load == nil {
			return nil, unavailable(name)
		}
		v, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		return v, nil
	}
}

type hooks struct {
	pool *resourcepool.Pool
	tk   Toolkit
}

func textArg(args []any) (*text.Text, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: want one *text.Text, got %d arguments", ErrInvalidArgument, len(args))
	}
	t, ok := args[0].(*text.Text)
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: want *text.Text, got %T", ErrInvalidArgument, args[0])
	}
	return t, nil
}

// of fetches the resource name for the text in args, typed.
func of[T any](ctx context.Context, h *hooks, name string, args []any) (T, error) {
	t, err := textArg(args)
	if err != nil {
		var zero T
		return zero, err
	}
	return resourcepool.Resolve[T](ctx, h.pool, name, t)
}

func (h *hooks) stemmer(ctx context.Context, _ ...any) (any, error) {
	if h.tk.Stemmer != nil {
		return h.tk.Stemmer, nil
	}
	db, err := resourcepool.Resolve[database.Store](ctx, h.pool, DBHelper)
	if err != nil {
		return nil, err
	}
	return tools.NewDelafStemmer(db), nil
}

func (h *hooks) tagSet(ctx context.Context) (tools.TagSet, error) {
	tagger, err := resourcepool.Resolve[tools.Tagger](ctx, h.pool, PosTagger)
	if err != nil {
		return nil, err
	}
	return tagger.TagSet(), nil
}

//
// ================= BASIC TEXT INFO =================
//

func (h *hooks) rawContent(_ context.Context, args ...any) (any, error) {
	t, err := textArg(args)
	if err != nil {
		return nil, err
	}
	return t.RawContent, nil
}

var rawWordsNoise = []*regexp.Regexp{
	regexp.MustCompile(`\(\([\p{L}\p{N}_\s]*\)\)`), // transcription metainfo
	regexp.MustCompile(`\.\.\.`),                   // short pauses
	regexp.MustCompile(`::+`),                      // vowel stretching
}

func (h *hooks) rawWords(_ context.Context, args ...any) (any, error) {
	t, err := textArg(args)
	if err != nil {
		return nil, err
	}
	content := t.RawContent
	for _, re := range rawWordsNoise {
		content = re.ReplaceAllString(content, " ")
	}
	return strings.Fields(content), nil
}

func (h *hooks) paragraphs(_ context.Context, args ...any) (any, error) {
	t, err := textArg(args)
	if err != nil {
		return nil, err
	}
	return t.Paragraphs(), nil
}

func (h *hooks) sentences(ctx context.Context, args ...any) (any, error) {
	paragraphs, err := of[[]string](ctx, h, Paragraphs, args)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range paragraphs {
		out = append(out, h.tk.Splitter.Split(p)...)
	}
	return out, nil
}

func (h *hooks) tokens(ctx context.Context, args ...any) (any, error) {
	sentences, err := of[[]string](ctx, h, Sentences, args)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(sentences))
	for i, s := range sentences {
		out[i] = h.tk.Tokenizer.Tokenize(s)
	}
	return out, nil
}

func (h *hooks) allTokens(ctx context.Context, args ...any) (any, error) {
	tokens, err := of[[][]string](ctx, h, Tokens, args)
	if err != nil {
		return nil, err
	}
	return flatten(tokens), nil
}

func (h *hooks) allWords(ctx context.Context, args ...any) (any, error) {
	tagged, err := of[[]tools.TaggedToken](ctx, h, TaggedWords, args)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(tagged))
	for i, tok := range tagged {
		out[i] = tok.Word
	}
	return out, nil
}

func (h *hooks) taggedSentences(ctx context.Context, args ...any) (any, error) {
	tokens, err := of[[][]string](ctx, h, Tokens, args)
	if err != nil {
		return nil, err
	}
	tagger, err := resourcepool.Resolve[tools.Tagger](ctx, h.pool, PosTagger)
	if err != nil {
		return nil, err
	}
	return tagger.TagSents(ctx, tokens)
}

func (h *hooks) taggedTokens(ctx context.Context, args ...any) (any, error) {
	sents, err := of[[][]tools.TaggedToken](ctx, h, TaggedSentences, args)
	if err != nil {
		return nil, err
	}
	return flatten(sents), nil
}

func (h *hooks) taggedWords(ctx context.Context, args ...any) (any, error) {
	tagged, err := of[[]tools.TaggedToken](ctx, h, TaggedTokens, args)
	if err != nil {
		return nil, err
	}
	ts, err := h.tagSet(ctx)
	if err != nil {
		return nil, err
	}
	return keep(tagged, func(tok tools.TaggedToken) bool { return !ts.IsPunctuation(tok) }), nil
}

func (h *hooks) taggedWordsInSents(ctx context.Context, args ...any) (any, error) {
	sents, err := of[[][]tools.TaggedToken](ctx, h, TaggedSentences, args)
	if err != nil {
		return nil, err
	}
	ts, err := h.tagSet(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]tools.TaggedToken, len(sents))
	for i, sent := range sents {
		out[i] = keep(sent, func(tok tools.TaggedToken) bool { return !ts.IsPunctuation(tok) })
	}
	return out, nil
}

//
// ================= DERIVED TEXT INFO =================
//

func (h *hooks) contentWords(ctx context.Context, args ...any) (any, error) {
	sents, err := of[[][]tools.TaggedToken](ctx, h, TaggedSentences, args)
	if err != nil {
		return nil, err
	}
	ts, err := h.tagSet(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(sents))
	for i, sent := range sents {
		words := []string{}
		for _, tok := range sent {
			if ts.IsContentWord(tok) {
				words = append(words, tok.Word)
			}
		}
		out[i] = words
	}
	return out, nil
}

func (h *hooks) stemmedContentWords(ctx context.Context, args ...any) (any, error) {
	sents, err := of[[][]tools.TaggedToken](ctx, h, TaggedSentences, args)
	if err != nil {
		return nil, err
	}
	ts, err := h.tagSet(ctx)
	if err != nil {
		return nil, err
	}
	stemmer, err := resourcepool.Resolve[tools.Stemmer](ctx, h.pool, Stemmer)
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(sents))
	for i, sent := range sents {
		lemmas := []string{}
		for _, tok := range sent {
			if !ts.IsContentWord(tok) {
				continue
			}
			lemma, ok, err := stemmer.Lemma(ctx, tok.Word, "")
			if err != nil {
				return nil, err
			}
			if !ok || lemma == "" {
				lemma = tok.Word
			}
			lemmas = append(lemmas, lemma)
		}
		out[i] = lemmas
	}
	return out, nil
}

func (h *hooks) cwFreq(ctx context.Context, args ...any) (any, error) {
	words, err := of[[][]string](ctx, h, ContentWords, args)
	if err != nil {
		return nil, err
	}
	db, err := resourcepool.Resolve[database.Store](ctx, h.pool, DBHelper)
	if err != nil {
		return nil, err
	}

	out := make([][]int, len(words))
	for i, sent := range words {
		freqs := make([]int, len(sent))
		for j, w := range sent {
			f, err := db.Frequency(ctx, strings.ToLower(w))
			if err != nil {
				return nil, err
			}
			if f != nil {
				freqs[j] = f.Freq
			}
		}
		out[i] = freqs
	}
	return out, nil
}

func (h *hooks) tokenTypes(ctx context.Context, args ...any) (any, error) {
	words, err := of[[]string](ctx, h, AllWords, args)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set, nil
}

//
// ================= PARSE STRUCTURES =================
//

func (h *hooks) parseTrees(ctx context.Context, args ...any) (any, error) {
	tokens, err := of[[][]string](ctx, h, Tokens, args)
	if err != nil {
		return nil, err
	}
	parser, err := resourcepool.Resolve[tools.Parser](ctx, h.pool, Parser)
	if err != nil {
		return nil, err
	}
	sents := make([]string, len(tokens))
	for i, sent := range tokens {
		sents[i] = strings.Join(sent, " ")
	}
	return parser.ParseSents(ctx, sents)
}

func (h *hooks) depTrees(ctx context.Context, args ...any) (any, error) {
	tokens, err := of[[][]string](ctx, h, Tokens, args)
	if err != nil {
		return nil, err
	}
	parser, err := resourcepool.Resolve[tools.DependencyParser](ctx, h.pool, DepParser)
	if err != nil {
		return nil, err
	}
	return parser.ParseSents(ctx, tokens)
}

func (h *hooks) toplevelNPs(ctx context.Context, args ...any) (any, error) {
	trees, err := of[[]*tools.Tree](ctx, h, ParseTrees, args)
	if err != nil {
		return nil, err
	}
	out := make([][]*tools.Tree, len(trees))
	for i, tree := range trees {
		out[i] = tree.ToplevelNPs()
	}
	return out, nil
}

func (h *hooks) leavesInToplevelNPs(ctx context.Context, args ...any) (any, error) {
	nps, err := of[[][]*tools.Tree](ctx, h, ToplevelNPs, args)
	if err != nil {
		return nil, err
	}
	out := make([][][]string, len(nps))
	for i, sent := range nps {
		leaves := make([][]string, len(sent))
		for j, np := range sent {
			leaves[j] = np.PreterminalWords("PNT")
		}
		out[i] = leaves
	}
	return out, nil
}

func flatten[T any](in [][]T) []T {
	n := 0
	for _, s := range in {
		n += len(s)
	}
	out := make([]T, 0, n)
	for _, s := range in {
		out = append(out, s...)
	}
	return out
}

func keep[T any](in []T, pred func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}
