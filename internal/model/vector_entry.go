package model

import (
	"github.com/pgvector/pgvector-go"
)

// VectorEntry is the pgvector row backing one embedded chunk. The table is
// created by the pgvector index itself because its column width depends on
// the configured embedding dimensions.
type VectorEntry struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	DocumentID string          `gorm:"size:64;not null;index" json:"document_id"`
	Embedding  pgvector.Vector `json:"-"`
	Metadata   JSONMap         `gorm:"type:jsonb" json:"metadata"`
}

func (VectorEntry) TableName() string {
	return "vector_entries"
}
