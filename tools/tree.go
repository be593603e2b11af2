package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTree is returned by ParseBracketed for unbalanced or empty input.
var ErrMalformedTree = errors.New("malformed bracketed tree")

/*
Tree is a constituency tree. A leaf has no children and its Label is the
word; a preterminal is a node whose only child is a leaf.

Trees handed out by a pool are shared: callers must not modify them.
*/
type Tree struct {
	Label    string
	Children []*Tree
}

// IsLeaf reports whether t is a word.
func (t *Tree) IsLeaf() bool { return len(t.Children) == 0 }

// Height is 1 for a leaf, 2 for a preterminal, and so on.
func (t *Tree) Height() int {
	h := 0
	for _, c := range t.Children {
		if ch := c.Height(); ch > h {
			h = ch
		}
	}
	return h + 1
}

// Leaves returns the words under t, left to right.
func (t *Tree) Leaves() []string {
	if t.IsLeaf() {
		return []string{t.Label}
	}
	var out []string
	for _, c := range t.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Subtrees returns every non-leaf node of t (t included) matching pred, in pre-order.
func (t *Tree) Subtrees(pred func(*Tree) bool) []*Tree {
	var out []*Tree
	var walk func(*Tree)
	walk = func(n *Tree) {
		if n.IsLeaf() {
			return
		}
		if pred == nil || pred(n) {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t)
	return out
}

// ToplevelNPs returns the NP nodes not contained in another NP.
func (t *Tree) ToplevelNPs() []*Tree {
	if t.Label == "NP" {
		return []*Tree{t}
	}
	var out []*Tree
	for _, c := range t.Children {
		if !c.IsLeaf() {
			out = append(out, c.ToplevelNPs()...)
		}
	}
	return out
}

// PreterminalWords returns the words of t's preterminals, skipping those
// whose tag is in skip.
func (t *Tree) PreterminalWords(skip ...string) []string {
	var out []string
	for _, n := range t.Subtrees(func(n *Tree) bool {
		return n.Height() == 2 && !contains(skip, n.Label)
	}) {
		out = append(out, n.Children[0].Label)
	}
	return out
}

// String renders t in bracketed form.
func (t *Tree) String() string {
	if t.IsLeaf() {
		return t.Label
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(t.Label)
	for _, c := range t.Children {
		b.WriteByte(' ')
		b.WriteString(c.String())
	}
	b.WriteByte(')')
	return b.String()
}

// ParseBracketed reads a Penn-style bracketed tree such as
// "(S (NP (ART o) (N livro)) (VP (V caiu)))".
func ParseBracketed(s string) (*Tree, error) {
	toks := bracketTokens(s)
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedTree)
	}

	pos := 0
	var parse func() (*Tree, error)
	parse = func() (*Tree, error) {
		if pos >= len(toks) {
			return nil, fmt.Errorf("%w: unexpected end", ErrMalformedTree)
		}
		tok := toks[pos]
		pos++
		switch tok {
		case ")":
			return nil, fmt.Errorf("%w: unexpected ')' at token %d", ErrMalformedTree, pos-1)
		case "(":
		default:
			return &Tree{Label: tok}, nil
		}

		node := &Tree{}
		if pos < len(toks) && toks[pos] != "(" && toks[pos] != ")" {
			node.Label = toks[pos]
			pos++
		}
		for {
			if pos >= len(toks) {
				return nil, fmt.Errorf("%w: missing ')'", ErrMalformedTree)
			}
			if toks[pos] == ")" {
				pos++
				return node, nil
			}
			child, err := parse()
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
	}

	tree, err := parse()
	if err != nil {
		return nil, err
	}
	if pos != len(toks) {
		return nil, fmt.Errorf("%w: trailing input after token %d", ErrMalformedTree, pos)
	}
	return tree, nil
}

func bracketTokens(s string) []string {
	s = strings.ReplaceAll(s, "(", " ( ")
	s = strings.ReplaceAll(s, ")", " ) ")
	return strings.Fields(s)
}

// ParserFunc adapts a per-sentence function, typically a call out to an
// external parser, to the Parser interface.
type ParserFunc func(ctx context.Context, sentence string) (*Tree, error)

func (f ParserFunc) ParseSents(ctx context.Context, sents []string) ([]*Tree, error) {
	out := make([]*Tree, len(sents))
	for i, s := range sents {
		t, err := f(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}
