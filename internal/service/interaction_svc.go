package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/rag"
	"github.com/tgo/chariott/internal/repository"
)

type InteractionService struct {
	interactions *repository.InteractionRepository
	responder    *rag.Responder
	counter      InteractionCounter
	logger       *slog.Logger
	now          func() time.Time
}

func NewInteractionService(interactions *repository.InteractionRepository, responder *rag.Responder, counter InteractionCounter) *InteractionService {
	return &InteractionService{
		interactions: interactions,
		responder:    responder,
		counter:      counter,
		logger:       slog.Default().With("service", "interaction"),
		now:          time.Now,
	}
}

type CreateInteractionRequest struct {
	UserID          string             `json:"user_id" binding:"required"`
	UserQuery       string             `json:"user_query" binding:"required"`
	ResponseType    model.ResponseType `json:"response_type" binding:"required"`
	ResponseContent string             `json:"response_content"`
	Sources         []string           `json:"sources"`
	Success         bool               `json:"success"`
	Timestamp       *time.Time         `json:"timestamp"`
}

// MaxChatTopK bounds how many passages one chat request may pull into the prompt.
const MaxChatTopK = 50

type ChatRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

func (s *InteractionService) Create(ctx context.Context, req *CreateInteractionRequest) (*model.RagInteraction, error) {
	if !req.ResponseType.Valid() {
		return nil, validationf("unknown response_type %q", req.ResponseType)
	}
	ts := s.now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	in := &model.RagInteraction{
		Timestamp:       normalizeTime(ts),
		UserID:          req.UserID,
		UserQuery:       req.UserQuery,
		ResponseType:    req.ResponseType,
		ResponseContent: req.ResponseContent,
		Sources:         model.StringArray(req.Sources),
		Success:         req.Success,
	}
	if in.Sources == nil {
		in.Sources = model.StringArray{}
	}
	if err := s.interactions.Create(ctx, in); err != nil {
		return nil, upstream("create interaction", err)
	}
	return in, nil
}

func (s *InteractionService) Get(ctx context.Context, id string) (*model.RagInteraction, error) {
	in, err := s.interactions.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("interaction", id, err)
	}
	return in, nil
}

func (s *InteractionService) ListByUser(ctx context.Context, userID string) ([]model.RagInteraction, error) {
	out, err := s.interactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, upstream("list interactions", err)
	}
	return out, nil
}

// Chat answers a query from the document index. An identified caller gets
// the exchange recorded and their interaction counter bumped.
func (s *InteractionService) Chat(ctx context.Context, userID string, req *ChatRequest) (*rag.Answer, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, validationf("query is required")
	}
	if req.TopK < 0 || req.TopK > MaxChatTopK {
		return nil, validationf("top_k must be between 0 and %d", MaxChatTopK)
	}

	answer, err := s.responder.Answer(ctx, rag.Query{Text: query, TopK: req.TopK})
	if userID != "" {
		s.record(ctx, userID, query, answer, err)
	}
	if err != nil {
		return nil, upstream("rag", err)
	}
	return answer, nil
}

func (s *InteractionService) record(ctx context.Context, userID, query string, answer *rag.Answer, answerErr error) {
	in := &model.RagInteraction{
		Timestamp:    normalizeTime(s.now()),
		UserID:       userID,
		UserQuery:    query,
		ResponseType: model.ResponseTypeRAG,
		Sources:      model.StringArray{},
		Success:      answerErr == nil,
	}
	if answerErr != nil {
		in.ResponseContent = answerErr.Error()
	} else {
		in.ResponseContent = answer.Response
		for _, src := range answer.Sources {
			in.Sources = append(in.Sources, src.DocumentID)
		}
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.interactions.Create(ctx, in); err != nil {
		s.logger.Warn("failed to record interaction", "user_id", userID, "error", err)
	}
	if _, err := s.counter.Increment(ctx, userID); err != nil {
		s.logger.Warn("failed to count interaction", "user_id", userID, "error", err)
	}
}
