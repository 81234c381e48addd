package model

import (
	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusCompleted DocumentStatus = "completed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// Document is one row of the ingestion status ledger. Its ID also tags every
// vector entry produced from the uploaded file.
type Document struct {
	BaseModel
	Tenant   string         `gorm:"size:255;not null;index" json:"tenant"`
	Hotel    string         `gorm:"size:255" json:"hotel,omitempty"`
	FileName string         `gorm:"size:500;not null" json:"document_name"`
	URL      string         `gorm:"size:1000" json:"url"`
	UserID   string         `gorm:"size:255;index" json:"user_id"`
	Status   DocumentStatus `gorm:"size:20;not null;default:'pending';index" json:"processing_status"`
	Error    string         `gorm:"type:text" json:"error,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentID derives the stable document id for an object-store key, so
// re-uploading the same file under the same tenant overwrites its ledger row.
func DocumentID(objectKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(objectKey)).String()
}
