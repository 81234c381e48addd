package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/model"
)

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(ctx context.Context, in *model.RagInteraction) error {
	return r.db.WithContext(ctx).Create(in).Error
}

func (r *InteractionRepository) FindByID(ctx context.Context, id string) (*model.RagInteraction, error) {
	var in model.RagInteraction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&in).Error; err != nil {
		return nil, err
	}
	return &in, nil
}

// ListByUser returns a user's interactions, newest first. An empty userID lists everyone's.
func (r *InteractionRepository) ListByUser(ctx context.Context, userID string) ([]model.RagInteraction, error) {
	var out []model.RagInteraction
	query := r.db.WithContext(ctx).Order("timestamp DESC, id ASC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Find(&out).Error
	return out, err
}
