package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/tgo/chariott/internal/pkg/vectorindex"
)

const (
	DefaultTopK      = 5
	ContextSeparator = "\n\n---\n\n"
)

// State is a step of answering one query.
type State string

const (
	StateQueryReceived     State = "QUERY_RECEIVED"
	StateEmbedded          State = "EMBEDDED"
	StateContextRetrieved  State = "CONTEXT_RETRIEVED"
	StatePromptBuilt       State = "PROMPT_BUILT"
	StateResponseGenerated State = "RESPONSE_GENERATED"
)

const systemPrompt = `You are a helpful hotel concierge assistant. Answer the guest's question using the context below.
If the context does not contain the answer, say that you don't know instead of guessing.

Context:
{context}`

const userPrompt = `{question}`

type Config struct {
	TopK  int
	Retry RetryPolicy
}

// Responder answers free-text questions from indexed document chunks.
type Responder struct {
	retriever *IndexRetriever
	model     model.BaseChatModel
	template  prompt.ChatTemplate
	topK      int
	retry     RetryPolicy
	logger    *slog.Logger
}

func NewResponder(embedder embedding.Embedder, index vectorindex.Index, chatModel model.BaseChatModel, cfg Config) *Responder {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy
	}
	return &Responder{
		retriever: NewIndexRetriever(embedder, index, cfg.TopK),
		model:     chatModel,
		template: prompt.FromMessages(schema.FString,
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(userPrompt),
		),
		topK:   cfg.TopK,
		retry:  cfg.Retry,
		logger: slog.Default().With("service", "rag"),
	}
}

// Retriever exposes the responder's retrieval stage as an eino retriever.
func (r *Responder) Retriever() *IndexRetriever {
	return r.retriever
}

type Query struct {
	Text   string
	TopK   int
	Filter map[string]interface{}
}

type Answer struct {
	Response string    `json:"response"`
	Passages []Passage `json:"-"`
	Sources  []Source  `json:"sources"`
}

type Source struct {
	DocumentID string  `json:"document_id"`
	URL        string  `json:"url,omitempty"`
	Score      float64 `json:"score"`
}

func (r *Responder) Answer(ctx context.Context, q Query) (*Answer, error) {
	topK := q.TopK
	if topK <= 0 {
		topK = r.topK
	}
	log := r.logger.With("query", truncate(q.Text, 50))
	log.Info("rag state", "state", StateQueryReceived, "top_k", topK)

	vec, err := r.retriever.embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}
	log.Info("rag state", "state", StateEmbedded, "dimensions", len(vec))

	passages, err := r.retriever.search(ctx, vec, topK, q.Filter)
	if err != nil {
		return nil, err
	}
	log.Info("rag state", "state", StateContextRetrieved, "passages", len(passages))

	messages, err := r.BuildPrompt(ctx, q.Text, passages)
	if err != nil {
		return nil, err
	}
	log.Info("rag state", "state", StatePromptBuilt, "messages", len(messages))

	msg, err := r.retry.Do(ctx, log, func(ctx context.Context) (*schema.Message, error) {
		return r.model.Generate(ctx, messages)
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	log.Info("rag state", "state", StateResponseGenerated, "chars", len(msg.Content))

	return &Answer{
		Response: msg.Content,
		Passages: passages,
		Sources:  sources(passages),
	}, nil
}

// BuildPrompt renders the chat messages for a question and its passages.
func (r *Responder) BuildPrompt(ctx context.Context, question string, passages []Passage) ([]*schema.Message, error) {
	messages, err := r.template.Format(ctx, map[string]any{
		"context":  JoinContext(passages),
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	return messages, nil
}

// JoinContext joins passage texts with the visible context separator.
func JoinContext(passages []Passage) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, ContextSeparator)
}

func sources(passages []Passage) []Source {
	seen := make(map[string]bool)
	out := make([]Source, 0, len(passages))
	for _, p := range passages {
		if p.DocumentID == "" || seen[p.DocumentID] {
			continue
		}
		seen[p.DocumentID] = true
		out = append(out, Source{DocumentID: p.DocumentID, URL: p.URL, Score: p.Score})
	}
	return out
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
