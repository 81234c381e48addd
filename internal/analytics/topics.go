package analytics

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultMaxTopics     = 5
	DefaultWordsPerTopic = 10

	// a document joins an existing topic at or above this cosine similarity
	joinThreshold = 0.2
)

type Topic struct {
	Label     string   `json:"label"`
	Keywords  []string `json:"keywords"`
	Documents int      `json:"documents"`
}

func (t Topic) String() string {
	return fmt.Sprintf("%s: %s", t.Label, strings.Join(t.Keywords, ", "))
}

type cluster struct {
	centroid []float64
	members  int
}

// ExtractTopics groups the corpus into at most maxTopics clusters of
// similar TF-IDF vectors and names each by its heaviest terms. The result
// is deterministic for a given corpus order.
func ExtractTopics(corpus []string, maxTopics, wordsPerTopic int) ([]Topic, error) {
	if maxTopics <= 0 {
		maxTopics = DefaultMaxTopics
	}
	if wordsPerTopic <= 0 {
		wordsPerTopic = DefaultWordsPerTopic
	}

	v, err := Fit(corpus)
	if err != nil {
		return nil, err
	}

	var clusters []*cluster
	for _, text := range corpus {
		vec := v.Transform(text)
		if isZero(vec) {
			continue
		}

		best, bestScore := -1, -1.0
		for i, c := range clusters {
			if s := dot(c.centroid, vec); s > bestScore {
				best, bestScore = i, s
			}
		}

		if best >= 0 && (bestScore >= joinThreshold || len(clusters) >= maxTopics) {
			c := clusters[best]
			for i := range c.centroid {
				c.centroid[i] = (c.centroid[i]*float64(c.members) + vec[i]) / float64(c.members+1)
			}
			normalize(c.centroid)
			c.members++
			continue
		}
		clusters = append(clusters, &cluster{centroid: vec, members: 1})
	}

	topics := make([]Topic, 0, len(clusters))
	for i, c := range clusters {
		topics = append(topics, Topic{
			Label:     fmt.Sprintf("Topic %d", i+1),
			Keywords:  topTerms(v.terms, c.centroid, wordsPerTopic),
			Documents: c.members,
		})
	}
	return topics, nil
}

func topTerms(terms []string, weights []float64, n int) []string {
	idx := make([]int, 0, len(weights))
	for i, w := range weights {
		if w > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if weights[idx[a]] != weights[idx[b]] {
			return weights[idx[a]] > weights[idx[b]]
		}
		return terms[idx[a]] < terms[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = terms[j]
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func isZero(vec []float64) bool {
	for _, x := range vec {
		if x != 0 {
			return false
		}
	}
	return true
}
