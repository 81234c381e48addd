package embedder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var _ embedding.Embedder = (*Embedder)(nil)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Dimensions  int
	BatchSize   int
	Concurrency int
	RateLimit   float64 // batches per second, <= 0 disables limiting
	Timeout     time.Duration
}

// Embedder calls an OpenAI-compatible embeddings endpoint. Inputs are sent in
// batches that run in parallel; results are always returned in input order.
type Embedder struct {
	client      *openai.Client
	model       string
	dimensions  int
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
}

func New(cfg Config) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	e := &Embedder{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
	}
	if cfg.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Concurrency)
	}
	return e
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// EmbedStrings returns one vector per text. Any failed batch fails the call.
func (e *Embedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float64, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		g.Go(func() error {
			if e.limiter != nil {
				if err := e.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			vecs, err := e.embedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	req := openai.EmbeddingRequest{
		Input: batch,
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(batch))
	}

	// the API reports each vector's input position; don't trust response order
	vecs := make([][]float64, len(batch))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(batch) || vecs[d.Index] != nil {
			return nil, fmt.Errorf("unexpected embedding index %d", d.Index)
		}
		v := make([]float64, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float64(f)
		}
		vecs[d.Index] = v
	}
	return vecs, nil
}
