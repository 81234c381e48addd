package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tgo/chariott/internal/analytics"
	"github.com/tgo/chariott/internal/rag"
)

const recommendationPrompt = `User Query: {query}

RAG Results:
{results}

Semantic Analysis Results:
{topics}

Based on the user query, RAG results, and semantic analysis, provide the top recommendations for the user.
Consider the most relevant information and insights from the analysis.`

const interactionAnalysisPrompt = `User Interactions Analysis:
{topics}

Based on the analysis of user interactions, provide insights and recommendations for improving user engagement and satisfaction.
Consider the most prominent topics and patterns in user behavior.`

type RecommendationService struct {
	retriever *rag.IndexRetriever
	recommend compose.Runnable[map[string]any, *schema.Message]
	analyze   compose.Runnable[map[string]any, *schema.Message]
	retry     rag.RetryPolicy
	logger    *slog.Logger
}

func NewRecommendationService(ctx context.Context, retriever *rag.IndexRetriever, chatModel model.BaseChatModel, retry rag.RetryPolicy) (*RecommendationService, error) {
	recommend, err := buildChain(ctx, "TopUserRecommendations", recommendationPrompt, chatModel)
	if err != nil {
		return nil, err
	}
	analyze, err := buildChain(ctx, "InteractionAnalysis", interactionAnalysisPrompt, chatModel)
	if err != nil {
		return nil, err
	}
	if retry.MaxAttempts == 0 {
		retry = rag.DefaultRetryPolicy
	}
	return &RecommendationService{
		retriever: retriever,
		recommend: recommend,
		analyze:   analyze,
		retry:     retry,
		logger:    slog.Default().With("service", "recommendation"),
	}, nil
}

func buildChain(ctx context.Context, name, tpl string, chatModel model.BaseChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(prompt.FromMessages(schema.FString, schema.UserMessage(tpl))).
		AppendChatModel(chatModel).
		Compile(ctx, compose.WithGraphName(name))
	if err != nil {
		return nil, fmt.Errorf("compile %s chain: %w", name, err)
	}
	return chain, nil
}

type RecommendationRequest struct {
	UserQuery string `json:"user_query" binding:"required"`
}

type RecommendationResponse struct {
	Recommendations string            `json:"recommendations"`
	Topics          []analytics.Topic `json:"topics"`
}

type UserInteraction struct {
	InteractionType string `json:"interaction_type"`
	Content         string `json:"content" binding:"required"`
}

type InteractionAnalysisRequest struct {
	UserInteractions []UserInteraction `json:"user_interactions" binding:"required,min=1,dive"`
}

type InteractionAnalysisResponse struct {
	Analysis string            `json:"analysis"`
	Topics   []analytics.Topic `json:"topics"`
}

// Recommend retrieves context for the query, extracts topic keywords from
// it and asks the model for recommendations.
func (s *RecommendationService) Recommend(ctx context.Context, req *RecommendationRequest) (*RecommendationResponse, error) {
	query := strings.TrimSpace(req.UserQuery)
	if query == "" {
		return nil, validationf("user_query is required")
	}

	docs, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, upstream("retrieve", err)
	}
	results := make([]string, 0, len(docs))
	for _, d := range docs {
		results = append(results, d.Content)
	}

	topics := s.topics(append([]string{query}, results...))
	msg, err := s.run(ctx, s.recommend, map[string]any{
		"query":   query,
		"results": indentJSON(results),
		"topics":  indentJSON(topicLines(topics)),
	})
	if err != nil {
		return nil, err
	}
	return &RecommendationResponse{Recommendations: strings.TrimSpace(msg.Content), Topics: topics}, nil
}

func (s *RecommendationService) AnalyzeInteractions(ctx context.Context, req *InteractionAnalysisRequest) (*InteractionAnalysisResponse, error) {
	if len(req.UserInteractions) == 0 {
		return nil, validationf("user_interactions cannot be empty")
	}
	corpus := make([]string, 0, len(req.UserInteractions))
	for _, in := range req.UserInteractions {
		corpus = append(corpus, in.Content)
	}

	topics := s.topics(corpus)
	msg, err := s.run(ctx, s.analyze, map[string]any{
		"topics": indentJSON(topicLines(topics)),
	})
	if err != nil {
		return nil, err
	}
	return &InteractionAnalysisResponse{Analysis: strings.TrimSpace(msg.Content), Topics: topics}, nil
}

func (s *RecommendationService) topics(corpus []string) []analytics.Topic {
	topics, err := analytics.ExtractTopics(corpus, analytics.DefaultMaxTopics, analytics.DefaultWordsPerTopic)
	if err != nil {
		s.logger.Warn("topic extraction skipped", "error", err)
		return []analytics.Topic{}
	}
	return topics
}

func (s *RecommendationService) run(ctx context.Context, chain compose.Runnable[map[string]any, *schema.Message], vars map[string]any) (*schema.Message, error) {
	msg, err := s.retry.Do(ctx, s.logger, func(ctx context.Context) (*schema.Message, error) {
		return chain.Invoke(ctx, vars)
	})
	if err != nil {
		return nil, upstream("generate", err)
	}
	return msg, nil
}

func topicLines(topics []analytics.Topic) []string {
	lines := make([]string, len(topics))
	for i, t := range topics {
		lines[i] = t.String()
	}
	return lines
}

func indentJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
