// Package text holds the text handle resources are computed for.
package text

import (
	"fmt"
	"os"
	"strings"
)

/*
Text is a document and its metadata.

Pools key derived resources on the *Text pointer, so a Text must not be
modified once it has been handed to a pool.
*/
type Text struct {
	RawContent     string
	RevisedContent string
	Meta           map[string]string

	paragraphs []string
}

// Option configures a Text during creation.
type Option func(*Text)

// WithRevised sets the revised content. Paragraphs come from it when set.
func WithRevised(content string) Option {
	return func(t *Text) {
		t.RevisedContent = content
	}
}

// WithMeta adds one metadata pair.
func WithMeta(key, value string) Option {
	return func(t *Text) {
		if t.Meta == nil {
			t.Meta = make(map[string]string)
		}
		t.Meta[key] = value
	}
}

// New creates a Text from its raw content.
func New(content string, opts ...Option) *Text {
	t := &Text{RawContent: content}
	for _, opt := range opts {
		opt(t)
	}

	src := t.RawContent
	if t.RevisedContent != "" {
		src = t.RevisedContent
	}
	for _, line := range strings.Split(src, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			t.paragraphs = append(t.paragraphs, line)
		}
	}
	return t
}

// ReadFile creates a Text from a UTF-8 file. The path is recorded as "path" metadata.
func ReadFile(path string, opts ...Option) (*Text, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied input
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}
	return New(string(data), append([]Option{WithMeta("path", path)}, opts...)...), nil
}

// Paragraphs returns a copy of the non-blank, trimmed lines of the text.
func (t *Text) Paragraphs() []string {
	out := make([]string, len(t.paragraphs))
	copy(out, t.paragraphs)
	return out
}

// Revised reports whether revised content was supplied.
func (t *Text) Revised() bool {
	return t.RevisedContent != ""
}

func (t *Text) String() string {
	if p, ok := t.Meta["path"]; ok {
		return p
	}
	const limit = 32
	s := strings.ReplaceAll(t.RawContent, "\n", " ")
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return fmt.Sprintf("%q", s)
}
