package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine index held in process memory.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Entry)}
}

func (m *MemoryIndex) Upsert(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry id is required")
		}
		if len(e.Vector) == 0 {
			return fmt.Errorf("entry %s has no vector", e.ID)
		}
		meta := make(map[string]interface{}, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v
		}
		m.entries[e.ID] = Entry{ID: e.ID, Vector: append([]float64(nil), e.Vector...), Metadata: meta}
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float64, topK int, filter map[string]interface{}) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.entries))
	for _, e := range m.entries {
		if !matchesFilter(e.Metadata, filter) {
			continue
		}
		matches = append(matches, Match{ID: e.ID, Score: cosine(vector, e.Vector), Metadata: e.Metadata})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MemoryIndex) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.entries {
		if e.Metadata[MetaDocumentID] == documentID {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryIndex) CountByDocument(ctx context.Context, documentID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		if e.Metadata[MetaDocumentID] == documentID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func matchesFilter(meta, filter map[string]interface{}) bool {
	for k, want := range filter {
		got, ok := meta[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
