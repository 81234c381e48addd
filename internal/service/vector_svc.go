package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/pkg/vectorindex"
	"github.com/tgo/chariott/internal/repository"
)

type VectorService struct {
	index  vectorindex.Index
	docs   *repository.DocumentRepository
	logger *slog.Logger
}

func NewVectorService(index vectorindex.Index, docs *repository.DocumentRepository) *VectorService {
	return &VectorService{
		index:  index,
		docs:   docs,
		logger: slog.Default().With("service", "vector"),
	}
}

type DeleteResult struct {
	DocumentID string `json:"document_id"`
	Deleted    int    `json:"deleted"`
	Message    string `json:"message"`
}

func (s *VectorService) DeleteByDocument(ctx context.Context, documentID string) (*DeleteResult, error) {
	n, err := s.index.DeleteByDocument(ctx, documentID)
	if err != nil {
		return nil, upstream("vector delete", err)
	}
	res := &DeleteResult{DocumentID: documentID, Deleted: n}
	if n == 0 {
		res.Message = fmt.Sprintf("No vectors found for document_id %s", documentID)
	} else {
		res.Message = fmt.Sprintf("Deleted %d vectors for document_id %s", n, documentID)
	}
	s.logger.Info("vectors deleted", "document_id", documentID, "count", n)
	return res, nil
}

// ReconcileRow describes a ledger row that is out of step with the index.
type ReconcileRow struct {
	Document model.Document `json:"document"`
	Vectors  int            `json:"vectors"`
	Reason   string         `json:"reason"`
}

// Reconcile lists failed or pending ledger rows and completed rows that have
// no vectors. With purge set, vectors of failed documents are removed.
func (s *VectorService) Reconcile(ctx context.Context, purge bool) ([]ReconcileRow, error) {
	docs, err := s.docs.ListByStatus(ctx)
	if err != nil {
		return nil, upstream("list documents", err)
	}

	var rows []ReconcileRow
	for _, doc := range docs {
		count, err := s.index.CountByDocument(ctx, doc.ID)
		if err != nil {
			return nil, upstream("vector count", err)
		}

		var reason string
		switch {
		case doc.Status == model.DocumentStatusFailed:
			reason = "failed"
		case doc.Status == model.DocumentStatusPending:
			reason = "pending"
		case count == 0:
			reason = "no vectors"
		default:
			continue
		}

		if purge && doc.Status == model.DocumentStatusFailed && count > 0 {
			if _, err := s.index.DeleteByDocument(ctx, doc.ID); err != nil {
				return nil, upstream("vector delete", err)
			}
			s.logger.Info("purged vectors of failed document", "document_id", doc.ID, "count", count)
			count = 0
		}
		rows = append(rows, ReconcileRow{Document: doc, Vectors: count, Reason: reason})
	}
	return rows, nil
}
