package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsServer struct {
	calls    atomic.Int32
	mu       sync.Mutex
	batches  [][]string
	failWith string
}

// ServeHTTP embeds "text-N" as [N, 1] and answers in reverse order.
func (s *embeddingsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	var req struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.batches = append(s.batches, req.Input)
	s.mu.Unlock()

	for _, in := range req.Input {
		if s.failWith != "" && in == s.failWith {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
	}

	type item struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}
	data := make([]item, 0, len(req.Input))
	for i := len(req.Input) - 1; i >= 0; i-- {
		n, _ := strconv.Atoi(strings.TrimPrefix(req.Input[i], "text-"))
		data = append(data, item{Object: "embedding", Embedding: []float32{float32(n), 1}, Index: i})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"object": "list",
		"data":   data,
		"model":  req.Model,
		"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
	})
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "text-" + strconv.Itoa(i)
	}
	return out
}

func TestEmbedStrings_PreservesOrder(t *testing.T) {
	fake := &embeddingsServer{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "k", BatchSize: 2, Concurrency: 3, RateLimit: 100})
	in := texts(7)

	vecs, err := e.EmbedStrings(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, vecs, len(in))
	for i, v := range vecs {
		assert.Equal(t, []float64{float64(i), 1}, v, "vector %d", i)
	}
	assert.EqualValues(t, 4, fake.calls.Load())
}

func TestEmbedStrings_FailureIsFatal(t *testing.T) {
	fake := &embeddingsServer{failWith: "text-4"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "k", BatchSize: 2, Concurrency: 2})
	vecs, err := e.EmbedStrings(context.Background(), texts(6))
	assert.Error(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedOne(t *testing.T) {
	srv := httptest.NewServer(&embeddingsServer{})
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "k"})
	v, err := e.EmbedOne(context.Background(), "text-42")
	require.NoError(t, err)
	assert.Equal(t, []float64{42, 1}, v)
}

func TestEmbedStrings_Empty(t *testing.T) {
	e := New(Config{BaseURL: "http://127.0.0.1:0", APIKey: "k"})
	vecs, err := e.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
