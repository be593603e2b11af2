package tools

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	sentenceStart = "<s>"
	sentenceEnd   = "</s>"
	unknownWord   = "<unk>"

	// unknownLogProb is used for words missing from a model without <unk>.
	unknownLogProb = -99.0
)

type ngram struct {
	logProb float64
	backoff float64
}

/*
ArpaModel is a backoff language model of order 1 or 2 read from an ARPA
file. Higher orders present in the file are ignored.
*/
type ArpaModel struct {
	unigrams map[string]ngram
	bigrams  map[[2]string]ngram
}

var _ LanguageModel = (*ArpaModel)(nil)

// LoadArpaModel reads an ARPA file from disk.
func LoadArpaModel(path string) (*ArpaModel, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied model path
	if err != nil {
		return nil, fmt.Errorf("failed to open language model: %w", err)
	}
	defer f.Close()

	m, err := ReadArpaModel(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadArpaModel parses ARPA text.
func ReadArpaModel(r io.Reader) (*ArpaModel, error) {
	m := &ArpaModel{
		unigrams: make(map[string]ngram),
		bigrams:  make(map[[2]string]ngram),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	order := 0
	line := 0
	sawData := false
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "":
			continue
		case text == `\data\`:
			sawData = true
			continue
		case text == `\end\`:
			order = -1
			continue
		case strings.HasPrefix(text, `\`) && strings.HasSuffix(text, "-grams:"):
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(text, `\`), "-grams:"))
			if err != nil {
				return nil, fmt.Errorf("arpa line %d: bad section %q", line, text)
			}
			order = n
			continue
		case order <= 0:
			// header counts ("ngram 1=...") and anything after \end\
			continue
		case order > 2:
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 1+order {
			return nil, fmt.Errorf("arpa line %d: want %d words", line, order)
		}
		lp, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("arpa line %d: %w", line, err)
		}
		g := ngram{logProb: lp}
		if len(fields) > 1+order {
			if g.backoff, err = strconv.ParseFloat(fields[1+order], 64); err != nil {
				return nil, fmt.Errorf("arpa line %d: %w", line, err)
			}
		}

		if order == 1 {
			m.unigrams[fields[1]] = g
		} else {
			m.bigrams[[2]string{fields[1], fields[2]}] = g
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawData || len(m.unigrams) == 0 {
		return nil, fmt.Errorf("not an ARPA model: no unigrams")
	}
	return m, nil
}

func (m *ArpaModel) unigram(w string) float64 {
	if g, ok := m.unigrams[w]; ok {
		return g.logProb
	}
	if g, ok := m.unigrams[unknownWord]; ok {
		return g.logProb
	}
	return unknownLogProb
}

func (m *ArpaModel) bigram(prev, w string) float64 {
	if g, ok := m.bigrams[[2]string{prev, w}]; ok {
		return g.logProb
	}
	return m.unigrams[prev].backoff + m.unigram(w)
}

// Score returns log10 P(<s> sentence </s>).
func (m *ArpaModel) Score(sentence string) float64 {
	words := append(strings.Fields(sentence), sentenceEnd)

	total := 0.0
	prev := sentenceStart
	for _, w := range words {
		total += m.bigram(prev, w)
		prev = w
	}
	return total
}
