package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"github.com/tgo/chariott/internal/pkg/vectorindex"
)

var _ retriever.Retriever = (*IndexRetriever)(nil)

// IndexRetriever answers eino retrieval calls by embedding the query and
// searching the vector index.
type IndexRetriever struct {
	embedder embedding.Embedder
	index    vectorindex.Index
	topK     int
	logger   *slog.Logger
}

func NewIndexRetriever(embedder embedding.Embedder, index vectorindex.Index, topK int) *IndexRetriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &IndexRetriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		logger:   slog.Default().With("service", "retriever"),
	}
}

type retrieveOptions struct {
	filter map[string]interface{}
}

// WithFilter restricts retrieval to entries whose metadata equals filter.
func WithFilter(filter map[string]interface{}) retriever.Option {
	return retriever.WrapImplSpecificOptFn(func(o *retrieveOptions) {
		o.filter = filter
	})
}

func (r *IndexRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := r.topK
	common := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	impl := retriever.GetImplSpecificOptions(&retrieveOptions{}, opts...)

	vec, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	passages, err := r.search(ctx, vec, *common.TopK, impl.filter)
	if err != nil {
		return nil, err
	}

	docs := make([]*schema.Document, 0, len(passages))
	for _, p := range passages {
		doc := &schema.Document{ID: p.ID, Content: p.Text, MetaData: p.Metadata}
		docs = append(docs, doc.WithScore(p.Score))
	}
	return docs, nil
}

func (r *IndexRetriever) GetType() string {
	return "IndexRetriever"
}

// Passage is a retrieved chunk with its text pulled out of the metadata.
type Passage struct {
	ID         string
	DocumentID string
	URL        string
	Text       string
	Score      float64
	Metadata   map[string]interface{}
}

func (r *IndexRetriever) embed(ctx context.Context, query string) ([]float64, error) {
	vecs, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	return vecs[0], nil
}

func (r *IndexRetriever) search(ctx context.Context, vec []float64, topK int, filter map[string]interface{}) ([]Passage, error) {
	if topK <= 0 {
		topK = r.topK
	}
	matches, err := r.index.Query(ctx, vec, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	passages := make([]Passage, 0, len(matches))
	for _, m := range matches {
		text, _ := m.Metadata[vectorindex.MetaText].(string)
		if text == "" {
			r.logger.Warn("match has no text in metadata, skipping", "id", m.ID)
			continue
		}
		docID, _ := m.Metadata[vectorindex.MetaDocumentID].(string)
		url, _ := m.Metadata[vectorindex.MetaURL].(string)
		passages = append(passages, Passage{
			ID:         m.ID,
			DocumentID: docID,
			URL:        url,
			Text:       text,
			Score:      m.Score,
			Metadata:   m.Metadata,
		})
	}
	return passages, nil
}
