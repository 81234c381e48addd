// Package app constructs the external clients and services from
// configuration and hands them to the HTTP server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/config"
	"github.com/tgo/chariott/internal/database"
	"github.com/tgo/chariott/internal/pkg/chunker"
	"github.com/tgo/chariott/internal/pkg/embedder"
	"github.com/tgo/chariott/internal/pkg/jwt"
	"github.com/tgo/chariott/internal/pkg/llm"
	"github.com/tgo/chariott/internal/pkg/objectstore"
	"github.com/tgo/chariott/internal/pkg/pdftext"
	"github.com/tgo/chariott/internal/pkg/redis"
	"github.com/tgo/chariott/internal/pkg/vectorindex"
	"github.com/tgo/chariott/internal/rag"
	"github.com/tgo/chariott/internal/repository"
	"github.com/tgo/chariott/internal/service"
)

// Clients are the external collaborators. Redis is optional.
type Clients struct {
	DB        *gorm.DB
	Store     objectstore.Store
	Extractor pdftext.Extractor
	Embedder  embedding.Embedder
	Index     vectorindex.Index
	ChatModel model.BaseChatModel
	Redis     *redis.Client
}

type App struct {
	Clients

	JWT       *jwt.Manager
	Responder *rag.Responder

	Documents       *service.DocumentService
	Vectors         *service.VectorService
	Users           *service.UserService
	Hotels          *service.HotelService
	Bookings        *service.BookingService
	Requests        *service.RequestService
	Interactions    *service.InteractionService
	Recommendations *service.RecommendationService
	Export          *service.ExportService
}

// New connects every client named by cfg and assembles the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	clients, err := Connect(ctx, cfg)
	if err != nil {
		_ = clients.Close()
		return nil, err
	}
	a, err := Assemble(ctx, cfg, clients)
	if err != nil {
		_ = clients.Close()
		return nil, err
	}
	return a, nil
}

func Connect(ctx context.Context, cfg *config.Config) (Clients, error) {
	var c Clients

	db, err := database.Connect(cfg)
	if err != nil {
		return c, fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return c, fmt.Errorf("migrate database: %w", err)
	}
	c.DB = db

	if c.Store, err = NewStore(ctx, cfg); err != nil {
		return c, err
	}
	if c.Index, err = NewIndex(ctx, cfg, db); err != nil {
		return c, err
	}

	c.Extractor = pdftext.NewPDFExtractor()
	c.Embedder = embedder.New(embedder.Config{
		APIKey:      cfg.EmbeddingAPIKey,
		BaseURL:     cfg.EmbeddingBaseURL,
		Model:       cfg.EmbeddingModel,
		Dimensions:  cfg.EmbeddingDimensions,
		BatchSize:   cfg.EmbeddingBatchSize,
		Concurrency: cfg.EmbeddingConcurrency,
		RateLimit:   cfg.EmbeddingRateLimit,
		Timeout:     cfg.UpstreamTimeout,
	})

	c.ChatModel, err = llm.NewFactory().CreateChatModel(ctx, &llm.ProviderConfig{
		Kind:        llm.ProviderKind(cfg.LLMProvider),
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		BaseURL:     cfg.LLMBaseURL,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.UpstreamTimeout,
	})
	if err != nil {
		return c, fmt.Errorf("create chat model: %w", err)
	}

	if cfg.RedisURL != "" {
		if c.Redis, err = redis.NewClient(cfg.RedisURL); err != nil {
			return c, fmt.Errorf("connect redis: %w", err)
		}
	}
	return c, nil
}

func NewStore(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return objectstore.NewLocalStore(cfg.StoragePath)
	case "s3":
		return objectstore.NewS3Store(ctx, objectstore.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func NewIndex(ctx context.Context, cfg *config.Config, db *gorm.DB) (vectorindex.Index, error) {
	switch cfg.VectorBackend {
	case "", "memory":
		return vectorindex.NewMemoryIndex(), nil
	case "pgvector":
		idx := vectorindex.NewPGVectorIndex(db, cfg.EmbeddingDimensions)
		if err := idx.Migrate(ctx); err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.VectorBackend)
	}
}

// Assemble wires services on top of already constructed clients.
func Assemble(ctx context.Context, cfg *config.Config, c Clients) (*App, error) {
	if c.DB == nil || c.Store == nil || c.Extractor == nil || c.Embedder == nil || c.Index == nil || c.ChatModel == nil {
		return nil, errors.New("app: missing client")
	}

	docRepo := repository.NewDocumentRepository(c.DB)
	userRepo := repository.NewUserRepository(c.DB)
	hotelRepo := repository.NewHotelRepository(c.DB)
	interactionRepo := repository.NewInteractionRepository(c.DB)

	var counter service.InteractionCounter = service.NewDBCounter(userRepo)
	if c.Redis != nil {
		counter = service.NewRedisCounter(c.Redis, userRepo)
	}

	a := &App{
		Clients: c,
		JWT:     jwt.NewManager(cfg.JWTSecret, cfg.AccessTokenExpireMin),
	}
	a.Responder = rag.NewResponder(c.Embedder, c.Index, c.ChatModel, rag.Config{TopK: cfg.RAGTopK})

	recommendations, err := service.NewRecommendationService(ctx, a.Responder.Retriever(), c.ChatModel, rag.DefaultRetryPolicy)
	if err != nil {
		return nil, err
	}

	a.Documents = service.NewDocumentService(docRepo, c.Store, c.Extractor,
		chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), c.Embedder, c.Index)
	a.Vectors = service.NewVectorService(c.Index, docRepo)
	a.Users = service.NewUserService(userRepo, counter, a.JWT, cfg.AccessTokenExpireMin)
	a.Hotels = service.NewHotelService(hotelRepo)
	a.Bookings = service.NewBookingService(repository.NewBookingRepository(c.DB), hotelRepo)
	a.Requests = service.NewRequestService(repository.NewRequestRepository(c.DB))
	a.Interactions = service.NewInteractionService(interactionRepo, a.Responder, counter)
	a.Recommendations = recommendations
	a.Export = service.NewExportService(interactionRepo)

	slog.Info("services assembled",
		"vector_backend", fmt.Sprintf("%T", c.Index),
		"store", fmt.Sprintf("%T", c.Store),
		"redis", c.Redis != nil)
	return a, nil
}

func (a *App) Close() error {
	return a.Clients.Close()
}

func (c Clients) Close() error {
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
