// Package analytics extracts topic keywords from free text for the
// recommendation endpoints.
package analytics

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

var ErrEmptyCorpus = errors.New("analytics: no usable tokens in corpus")

// Vectorizer is a TF-IDF model fitted on one corpus.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Fit builds the vocabulary and smoothed IDF weights.
func Fit(corpus []string) (*Vectorizer, error) {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyCorpus
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v, nil
}

func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Transform returns the L2-normalised TF-IDF vector of text.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}
	normalize(vec)
	return vec
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if len([]rune(t)) < 2 {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func normalize(vec []float64) {
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "don", "should", "now", "i", "im", "i'm", "me", "my",
		"we", "our", "you", "your", "he", "she", "they", "them", "their", "what", "which", "who", "whom",
		"do", "does", "did", "have", "has", "had", "not", "no", "all", "any", "some", "there", "here",
		"looking", "want", "would", "like", "please",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
