package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/database"
	"github.com/tgo/chariott/internal/pkg/objectstore"
	"github.com/tgo/chariott/internal/pkg/vectorindex"
	"github.com/tgo/chariott/internal/rag"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

var fastRetry = rag.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

type countingStore struct {
	objectstore.Store
	mu   sync.Mutex
	puts int
	gets int
}

func (s *countingStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.Store.Put(ctx, key, r, size, contentType)
}

func (s *countingStore) Get(ctx context.Context, address string) ([]byte, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.Store.Get(ctx, address)
}

type countingIndex struct {
	*vectorindex.MemoryIndex
	mu      sync.Mutex
	upserts [][]vectorindex.Entry
	err     error
}

func (i *countingIndex) Upsert(ctx context.Context, entries []vectorindex.Entry) error {
	i.mu.Lock()
	i.upserts = append(i.upserts, entries)
	i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	return i.MemoryIndex.Upsert(ctx, entries)
}

type fakeExtractor struct {
	pages []string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, []byte) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

// fakeEmbedder maps every text to a fixed 3-d vector, or to a configured one.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64
	inputs  [][]string
	err     error
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float64{1, 0.5, 0.25}
		}
	}
	return out, nil
}

type fakeChatModel struct {
	mu       sync.Mutex
	reply    string
	failures []error
	prompts  [][]*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, input)
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (f *fakeChatModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
