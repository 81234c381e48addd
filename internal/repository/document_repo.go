package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tgo/chariott/internal/model"
)

// DocumentRepository is the ingestion status ledger.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// PutStatus writes the row, overwriting any existing row with the same id.
func (r *DocumentRepository) PutStatus(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tenant", "hotel", "file_name", "url", "user_id", "status", "error", "updated_at"}),
	}).Create(doc).Error
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, offset, limit int) ([]model.Document, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&model.Document{}), offset, limit)
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Document, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&model.Document{}).Where("user_id = ?", userID), offset, limit)
}

func (r *DocumentRepository) ListByStatus(ctx context.Context, statuses ...model.DocumentStatus) ([]model.Document, error) {
	var docs []model.Document
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Find(&docs).Error
	return docs, err
}

// Delete removes the ledger row only and reports whether one existed.
func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Document{})
	return result.RowsAffected > 0, result.Error
}

func (r *DocumentRepository) page(_ context.Context, query *gorm.DB, offset, limit int) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Session(&gorm.Session{}).Order("created_at DESC, id ASC").Limit(limit).Offset(offset).Find(&docs).Error
	return docs, total, err
}
