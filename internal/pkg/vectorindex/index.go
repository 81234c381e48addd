// Package vectorindex stores chunk embeddings with metadata and answers
// nearest-neighbour queries over them.
package vectorindex

import (
	"context"
	"fmt"
)

// Metadata keys written for every chunk entry.
const (
	MetaDocumentID = "document_id"
	MetaURL        = "url"
	MetaUserID     = "user_id"
	MetaText       = "text"
)

type Entry struct {
	ID       string
	Vector   []float64
	Metadata map[string]interface{}
}

type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

type Index interface {
	// Upsert replaces any entry with the same id.
	Upsert(ctx context.Context, entries []Entry) error
	// Query returns up to topK matches by descending similarity. Filter
	// entries must all equal the corresponding metadata values.
	Query(ctx context.Context, vector []float64, topK int, filter map[string]interface{}) ([]Match, error)
	// DeleteByDocument removes every entry tagged with documentID and
	// reports how many were removed.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
}

// EntryID is the vector id of chunk i of a document.
func EntryID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", documentID, chunkIndex)
}
