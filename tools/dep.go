package tools

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DepNode is one token of a dependency graph. Head is the 1-based index of
// the governing token, 0 for the root.
type DepNode struct {
	Index int
	Word  string
	Lemma string
	Tag   string
	Head  int
	Rel   string
}

// DepGraph is the dependency analysis of one sentence.
type DepGraph struct {
	Nodes []DepNode
}

// Root returns the node attached to the artificial root, if any.
func (g *DepGraph) Root() (DepNode, bool) {
	for _, n := range g.Nodes {
		if n.Head == 0 {
			return n, true
		}
	}
	return DepNode{}, false
}

// Dependents returns the nodes governed by the token at index.
func (g *DepGraph) Dependents(index int) []DepNode {
	var out []DepNode
	for _, n := range g.Nodes {
		if n.Head == index {
			out = append(out, n)
		}
	}
	return out
}

// ParseCoNLL reads one sentence in CoNLL-X format (ID FORM LEMMA CPOSTAG
// POSTAG FEATS HEAD DEPREL, tab separated).
func ParseCoNLL(s string) (*DepGraph, error) {
	g := &DepGraph{}
	sc := bufio.NewScanner(strings.NewReader(s))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) < 8 {
			return nil, fmt.Errorf("conll line %d: want at least 8 columns, got %d", line, len(cols))
		}
		idx, err := strconv.Atoi(cols[0])
		if err != nil {
			return nil, fmt.Errorf("conll line %d: bad id: %w", line, err)
		}
		head, err := strconv.Atoi(cols[6])
		if err != nil {
			return nil, fmt.Errorf("conll line %d: bad head: %w", line, err)
		}
		g.Nodes = append(g.Nodes, DepNode{
			Index: idx,
			Word:  cols[1],
			Lemma: cols[2],
			Tag:   cols[3],
			Head:  head,
			Rel:   cols[7],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// DependencyParserFunc adapts a per-sentence function to DependencyParser.
type DependencyParserFunc func(ctx context.Context, tokens []string) (*DepGraph, error)

func (f DependencyParserFunc) ParseSents(ctx context.Context, sents [][]string) ([]*DepGraph, error) {
	out := make([]*DepGraph, len(sents))
	for i, s := range sents {
		g, err := f(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		out[i] = g
	}
	return out, nil
}
