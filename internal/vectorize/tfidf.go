// Package vectorize turns raw text into TF-IDF weighted sparse vectors.
package vectorize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 5000

// ErrNotFitted is returned when Transform is called before Fit or FromState.
var ErrNotFitted = errors.New("vectorizer not fitted")

// Maximal runs of two or more Unicode letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and returns its terms of two or more word characters,
// with English stop words removed.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if IsStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Vectorizer maps text to TF-IDF vectors over a fitted vocabulary.
type Vectorizer struct {
	vocabulary  map[string]int
	terms       []string
	idf         []float64
	maxFeatures int
}

// New creates an unfitted vectorizer. maxFeatures <= 0 uses DefaultMaxFeatures.
func New(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Vectorizer{maxFeatures: maxFeatures}
}

// Fit learns the vocabulary and IDF weights from texts.
// The most frequent terms across the corpus are kept, ties broken alphabetically,
// and indices are assigned in alphabetical order.
func (v *Vectorizer) Fit(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("fit vectorizer: no documents")
	}

	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(text) {
			termFreq[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}
	if len(termFreq) == 0 {
		return fmt.Errorf("fit vectorizer: empty vocabulary, documents contain only stop words")
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		fi, fj := termFreq[terms[i]], termFreq[terms[j]]
		if fi != fj {
			return fi > fj
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(texts))
	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return nil
}

// Fitted reports whether the vectorizer has a vocabulary.
func (v *Vectorizer) Fitted() bool {
	return v != nil && len(v.vocabulary) > 0
}

// Dim is the dimensionality of produced vectors.
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// Terms returns the vocabulary ordered by feature index.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Transform converts text to an L2-normalised TF-IDF vector.
// Terms outside the vocabulary are ignored; text with no known terms yields an empty vector.
func (v *Vectorizer) Transform(text string) (Vector, error) {
	if !v.Fitted() {
		return Vector{}, ErrNotFitted
	}

	counts := make(map[int]int)
	for _, tok := range Tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	vec := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
		Dim:     len(v.terms),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := float64(counts[idx]) * v.idf[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}

	return vec, nil
}

// TransformAll transforms every text.
func (v *Vectorizer) TransformAll(texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	for i, text := range texts {
		vec, err := v.Transform(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// State is the serialisable form of a fitted vectorizer.
type State struct {
	Terms       []string  `json:"terms"`
	IDF         []float64 `json:"idf"`
	MaxFeatures int       `json:"max_features"`
}

// State exports the fitted vocabulary and weights.
func (v *Vectorizer) State() State {
	idf := make([]float64, len(v.idf))
	copy(idf, v.idf)
	return State{Terms: v.Terms(), IDF: idf, MaxFeatures: v.maxFeatures}
}

// FromState rebuilds a vectorizer from exported state.
func FromState(s State) (*Vectorizer, error) {
	if len(s.Terms) == 0 {
		return nil, fmt.Errorf("restore vectorizer: %w", ErrNotFitted)
	}
	if len(s.Terms) != len(s.IDF) {
		return nil, fmt.Errorf("restore vectorizer: %d terms but %d idf weights", len(s.Terms), len(s.IDF))
	}

	v := New(s.MaxFeatures)
	v.terms = make([]string, len(s.Terms))
	copy(v.terms, s.Terms)
	v.idf = make([]float64, len(s.IDF))
	copy(v.idf, s.IDF)
	v.vocabulary = make(map[string]int, len(s.Terms))
	for i, term := range s.Terms {
		if _, dup := v.vocabulary[term]; dup {
			return nil, fmt.Errorf("restore vectorizer: duplicate term %q", term)
		}
		v.vocabulary[term] = i
	}
	return v, nil
}
