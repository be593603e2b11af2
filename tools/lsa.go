package tools

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

/*
LsaSpace is a latent semantic space given as one vector per word.
A document's vector is the sum of the vectors of its known words.
*/
type LsaSpace struct {
	dims    int
	vectors map[string][]float64
}

// LoadLsaSpace reads a word-vector file: one "word v1 v2 ... vk" line per
// word, whitespace separated. Every line must have the same k.
func LoadLsaSpace(path string) (*LsaSpace, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied model path
	if err != nil {
		return nil, fmt.Errorf("failed to open lsa space: %w", err)
	}
	defer f.Close()

	s, err := ReadLsaSpace(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadLsaSpace parses the format read by LoadLsaSpace.
func ReadLsaSpace(r io.Reader) (*LsaSpace, error) {
	s := &LsaSpace{vectors: make(map[string][]float64)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("lsa line %d: word without vector", line)
		}
		if s.dims == 0 {
			s.dims = len(fields) - 1
		} else if len(fields)-1 != s.dims {
			return nil, fmt.Errorf("lsa line %d: %d dimensions, want %d", line, len(fields)-1, s.dims)
		}

		vec := make([]float64, s.dims)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("lsa line %d: %w", line, err)
			}
			vec[i] = v
		}
		s.vectors[strings.ToLower(fields[0])] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if s.dims == 0 {
		return nil, fmt.Errorf("lsa space is empty")
	}
	return s, nil
}

// NumTopics is the dimensionality of the space.
func (s *LsaSpace) NumTopics() int { return s.dims }

// Vector returns the document vector of doc. Unknown words are ignored.
func (s *LsaSpace) Vector(doc []string) []float64 {
	out := make([]float64, s.dims)
	for _, w := range doc {
		v, ok := s.vectors[strings.ToLower(w)]
		if !ok {
			continue
		}
		for i := range out {
			out[i] += v[i]
		}
	}
	return out
}

// Similarity is the cosine of the two document vectors, in [-1, 1].
// It is 0 when either document has no known words.
func (s *LsaSpace) Similarity(doc1, doc2 []string) float64 {
	a, b := s.Vector(doc1), s.Vector(doc2)
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
