package tools

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohmetrix/resource-pool/database"
)

//
// ================= SPLITTING & TOKENIZING =================
//

func TestRegexpSplitter(t *testing.T) {
	s, err := NewRegexpSplitter("")
	require.NoError(t, err)

	got := s.Split(`O livro caiu. Ele disse: "Fim!" E saiu... Depois voltou`)
	assert.Equal(t, []string{
		"O livro caiu.",
		`Ele disse: "Fim!"`,
		"E saiu...",
		"Depois voltou",
	}, got)

	assert.Empty(t, s.Split("   "))

	_, err = NewRegexpSplitter("(")
	assert.Error(t, err)
}

func TestRegexpTokenizer(t *testing.T) {
	tk, err := NewRegexpTokenizer("")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"Guarda-chuva", "custa", "12,50", ",", "não", "é", "?"},
		tk.Tokenize("Guarda-chuva custa 12,50, não é?"))
	assert.Equal(t, []string{"Então", "..."}, tk.Tokenize("Então..."))
}

//
// ================= TAGGING =================
//

func TestLexiconTagger(t *testing.T) {
	lex, err := ReadLexicon(strings.NewReader("# comment\nO\tART\nlivro\tN\n\ncaiu\tV\n"))
	require.NoError(t, err)

	tg := NewLexiconTagger(lex, MacMorphoTagSet)
	out, err := tg.TagSents(context.Background(), [][]string{{"o", "Livro", "caiu", "."}, {"3", "xyz"}})
	require.NoError(t, err)

	assert.Equal(t, []TaggedToken{{"o", "ART"}, {"Livro", "N"}, {"caiu", "V"}, {".", "PU"}}, out[0])
	assert.Equal(t, []TaggedToken{{"3", "NUM"}, {"xyz", "N"}}, out[1])

	ts := tg.TagSet()
	assert.True(t, ts.IsPunctuation(out[0][3]))
	assert.True(t, ts.IsContentWord(out[0][1]))
	assert.True(t, ts.IsFunctionWord(out[0][0]))
	assert.False(t, ts.IsContentWord(out[0][0]))
}

func TestReadLexiconRejectsBadLine(t *testing.T) {
	_, err := ReadLexicon(strings.NewReader("ok\tN\nbroken\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadLexiconTagger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lex.tsv")
	require.NoError(t, os.WriteFile(path, []byte("casa\tN\n"), 0o600))

	tg, err := LoadLexiconTagger(path, MacMorphoTagSet)
	require.NoError(t, err)
	out, err := tg.TagSents(context.Background(), [][]string{{"casa"}})
	require.NoError(t, err)
	assert.Equal(t, "N", out[0][0].Tag)

	_, err = LoadLexiconTagger(filepath.Join(t.TempDir(), "none"), MacMorphoTagSet)
	assert.Error(t, err)
}

func TestTagSentsHonoursContext(t *testing.T) {
	tg := NewLexiconTagger(nil, MacMorphoTagSet)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tg.TagSents(ctx, [][]string{{"a"}})
	assert.ErrorIs(t, err, context.Canceled)
}

//
// ================= TREES =================
//

const sampleTree = "(ROOT (S (NP (ART O) (N menino) (PP (PREP de) (NP (N azul)))) (VP (V comeu) (NP (ART a) (N maçã))) (PNT .)))"

func TestParseBracketed(t *testing.T) {
	tree, err := ParseBracketed(sampleTree)
	require.NoError(t, err)

	assert.Equal(t, "ROOT", tree.Label)
	assert.Equal(t, []string{"O", "menino", "de", "azul", "comeu", "a", "maçã", "."}, tree.Leaves())
	assert.Equal(t, sampleTree, tree.String())
	assert.Equal(t, 7, tree.Height())
}

func TestParseBracketedErrors(t *testing.T) {
	for _, in := range []string{"", "(S (NP x)", "(S x))", ")"} {
		_, err := ParseBracketed(in)
		assert.ErrorIs(t, err, ErrMalformedTree, in)
	}
}

func TestToplevelNPs(t *testing.T) {
	tree, err := ParseBracketed(sampleTree)
	require.NoError(t, err)

	nps := tree.ToplevelNPs()
	require.Len(t, nps, 2)
	assert.Equal(t, []string{"O", "menino", "de", "azul"}, nps[0].Leaves())
	assert.Equal(t, []string{"a", "maçã"}, nps[1].Leaves())
}

func TestPreterminalWordsSkipsTags(t *testing.T) {
	tree, err := ParseBracketed("(NP (N livros) (PNT ,) (N cadernos))")
	require.NoError(t, err)
	assert.Equal(t, []string{"livros", "cadernos"}, tree.PreterminalWords("PNT"))
	assert.Equal(t, []string{"livros", ",", "cadernos"}, tree.PreterminalWords())
}

func TestParserFunc(t *testing.T) {
	p := ParserFunc(func(_ context.Context, s string) (*Tree, error) {
		if s == "bad" {
			return nil, errors.New("no parse")
		}
		return &Tree{Label: "S", Children: []*Tree{{Label: s}}}, nil
	})

	trees, err := p.ParseSents(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, trees, 2)

	_, err = p.ParseSents(context.Background(), []string{"a", "bad"})
	assert.ErrorContains(t, err, "sentence 1")
}

//
// ================= DEPENDENCIES =================
//

func TestParseCoNLL(t *testing.T) {
	g, err := ParseCoNLL("1\tO\to\tART\tART\t_\t2\tdet\n2\tlivro\tlivro\tN\tN\t_\t3\tnsubj\n3\tcaiu\tcair\tV\tV\t_\t0\troot\n")
	require.NoError(t, err)
	require.Len(t, g.Nodes, 3)

	root, ok := g.Root()
	require.True(t, ok)
	assert.Equal(t, "caiu", root.Word)
	assert.Equal(t, "cair", root.Lemma)

	deps := g.Dependents(3)
	require.Len(t, deps, 1)
	assert.Equal(t, "nsubj", deps[0].Rel)

	_, err = ParseCoNLL("1\tO\n")
	assert.ErrorContains(t, err, "8 columns")
}

//
// ================= STEMMER =================
//

type delafMap map[string]string

func (m delafMap) DelafWord(_ context.Context, word, _ string) (*database.DelafWord, error) {
	if word == "erro" {
		return nil, errors.New("db down")
	}
	lemma, ok := m[word]
	if !ok {
		return nil, nil
	}
	return &database.DelafWord{Word: word, Lemma: lemma}, nil
}

func TestDelafStemmer(t *testing.T) {
	s := NewDelafStemmer(delafMap{"meninos": "menino"})
	ctx := context.Background()

	lemma, ok, err := s.Lemma(ctx, "meninos", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "menino", lemma)

	_, ok, err = s.Lemma(ctx, "xyz", "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Lemma(ctx, "erro", "")
	assert.Error(t, err)
}

//
// ================= LSA =================
//

func TestLsaSpace(t *testing.T) {
	s, err := ReadLsaSpace(strings.NewReader("livro 1 0\nmesa 0.9 0.1\ncadeira 0.8 0.2\nmercado 0 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumTopics())

	same := s.Similarity([]string{"livro", "mesa"}, []string{"Livro", "MESA"})
	assert.InDelta(t, 1.0, same, 1e-9)

	near := s.Similarity([]string{"livro", "mesa"}, []string{"livro", "cadeira"})
	far := s.Similarity([]string{"livro", "mesa"}, []string{"mercado"})
	assert.Greater(t, near, far)

	assert.Equal(t, 0.0, s.Similarity([]string{"desconhecido"}, []string{"livro"}))
}

func TestReadLsaSpaceErrors(t *testing.T) {
	_, err := ReadLsaSpace(strings.NewReader("a 1 2\nb 1\n"))
	assert.ErrorContains(t, err, "dimensions")

	_, err = ReadLsaSpace(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadLsaSpace(strings.NewReader("a x\n"))
	assert.Error(t, err)
}

//
// ================= LANGUAGE MODEL =================
//

const sampleArpa = `
\data\
ngram 1=5
ngram 2=3

\1-grams:
-1.0	<s>	-0.5
-0.7	o	-0.3
-1.2	livro	-0.2
-0.9	</s>
-2.0	<unk>

\2-grams:
-0.2	<s> o
-0.4	o livro
-0.1	livro </s>

\end\
`

func TestArpaModelScore(t *testing.T) {
	m, err := ReadArpaModel(strings.NewReader(sampleArpa))
	require.NoError(t, err)

	// every bigram is listed
	assert.InDelta(t, -0.2-0.4-0.1, m.Score("o livro"), 1e-9)

	// livro -> o backs off: bo(livro) + p(o); o -> </s> backs off: bo(o) + p(</s>)
	want := -0.2 + (-0.4) + (-0.2 + -0.7) + (-0.3 + -0.9)
	assert.InDelta(t, want, m.Score("o livro o"), 1e-9)

	// unknown word uses <unk>
	unk := -0.2 + (-0.3 + -2.0) + (0 + -0.9)
	assert.InDelta(t, unk, m.Score("o zebra"), 1e-9)
}

func TestArpaModelWithoutUnk(t *testing.T) {
	m, err := ReadArpaModel(strings.NewReader("\\data\\\n\\1-grams:\n-1\t</s>\n\\end\\\n"))
	require.NoError(t, err)
	assert.InDelta(t, unknownLogProb+(-1), m.Score("x"), 1e-9)
	assert.False(t, math.IsNaN(m.Score("")))
}

func TestReadArpaModelErrors(t *testing.T) {
	_, err := ReadArpaModel(strings.NewReader("just text"))
	assert.Error(t, err)

	_, err = ReadArpaModel(strings.NewReader("\\data\\\n\\1-grams:\nnotanumber w\n"))
	assert.Error(t, err)
}
