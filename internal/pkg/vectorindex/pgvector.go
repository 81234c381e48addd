package vectorindex

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tgo/chariott/internal/model"
)

// PGVectorIndex keeps entries in a Postgres table with a pgvector column and
// ranks them by cosine distance.
type PGVectorIndex struct {
	db         *gorm.DB
	dimensions int
}

func NewPGVectorIndex(db *gorm.DB, dimensions int) *PGVectorIndex {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &PGVectorIndex{db: db, dimensions: dimensions}
}

// Migrate creates the extension, table and lookup index if missing.
func (p *PGVectorIndex) Migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vector_entries (
			id TEXT PRIMARY KEY,
			document_id VARCHAR(64) NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB
		)`, p.dimensions),
		"CREATE INDEX IF NOT EXISTS idx_vector_entries_document_id ON vector_entries (document_id)",
	}
	for _, stmt := range stmts {
		if err := p.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate vector_entries: %w", err)
		}
	}
	return nil
}

func (p *PGVectorIndex) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]model.VectorEntry, len(entries))
	for i, e := range entries {
		docID, _ := e.Metadata[MetaDocumentID].(string)
		rows[i] = model.VectorEntry{
			ID:         e.ID,
			DocumentID: docID,
			Embedding:  pgvector.NewVector(toFloat32(e.Vector)),
			Metadata:   model.JSONMap(e.Metadata),
		}
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document_id", "embedding", "metadata"}),
	}).CreateInBatches(&rows, 100).Error
}

func (p *PGVectorIndex) Query(ctx context.Context, vector []float64, topK int, filter map[string]interface{}) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	var rows []struct {
		ID       string
		Metadata model.JSONMap
		Distance float64 `gorm:"column:distance"`
	}

	query := p.db.WithContext(ctx).
		Table(model.VectorEntry{}.TableName()).
		Select("id, metadata, embedding <=> ? AS distance", pgvector.NewVector(toFloat32(vector)))
	for k, v := range filter {
		if k == MetaDocumentID {
			query = query.Where("document_id = ?", fmt.Sprint(v))
			continue
		}
		query = query.Where("metadata->>? = ?", k, fmt.Sprint(v))
	}

	if err := query.Order("distance ASC").Limit(topK).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	matches := make([]Match, len(rows))
	for i, r := range rows {
		matches[i] = Match{ID: r.ID, Score: 1 - r.Distance, Metadata: r.Metadata}
	}
	return matches, nil
}

func (p *PGVectorIndex) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	result := p.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.VectorEntry{})
	return int(result.RowsAffected), result.Error
}

func (p *PGVectorIndex) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&model.VectorEntry{}).Where("document_id = ?", documentID).Count(&n).Error
	return int(n), err
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
