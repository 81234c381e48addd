package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/pkg/chunker"
	"github.com/tgo/chariott/internal/pkg/objectstore"
	"github.com/tgo/chariott/internal/pkg/pdftext"
	"github.com/tgo/chariott/internal/pkg/vectorindex"
	"github.com/tgo/chariott/internal/repository"
)

// IsPDF reports whether a file name has the only accepted upload extension.
func IsPDF(fileName string) bool {
	return strings.EqualFold(path.Ext(fileName), ".pdf")
}

type DocumentService struct {
	docs      *repository.DocumentRepository
	store     objectstore.Store
	extractor pdftext.Extractor
	splitter  *chunker.Splitter
	embedder  embedding.Embedder
	index     vectorindex.Index
	logger    *slog.Logger
}

func NewDocumentService(
	docs *repository.DocumentRepository,
	store objectstore.Store,
	extractor pdftext.Extractor,
	splitter *chunker.Splitter,
	embedder embedding.Embedder,
	index vectorindex.Index,
) *DocumentService {
	return &DocumentService{
		docs:      docs,
		store:     store,
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		logger:    slog.Default().With("service", "document"),
	}
}

type UploadInput struct {
	Tenant      string
	Hotel       string
	FileName    string
	UserID      string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Upload stores the file and runs the ingestion pipeline synchronously.
// The ledger row is written as pending before processing and ends up
// completed or, best effort, failed. Nothing already written to the object
// store or the index is rolled back.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if !IsPDF(in.FileName) {
		return nil, validationf("only PDF files are supported, got %q", in.FileName)
	}
	if strings.TrimSpace(in.Tenant) == "" {
		return nil, validationf("tenant_id is required")
	}

	key := objectstore.Key(in.Tenant, in.Hotel, in.FileName)
	address, err := s.store.Put(ctx, key, in.Reader, in.Size, in.ContentType)
	if err != nil {
		return nil, validationf("store upload: %v", err)
	}

	doc := &model.Document{
		Tenant:   in.Tenant,
		Hotel:    in.Hotel,
		FileName: path.Base(key),
		URL:      address,
		UserID:   in.UserID,
		Status:   model.DocumentStatusPending,
	}
	doc.ID = model.DocumentID(key)

	if err := s.docs.PutStatus(ctx, doc); err != nil {
		return nil, upstream("ledger write", err)
	}

	log := s.logger.With("document_id", doc.ID, "address", address)
	chunks, err := s.ingest(ctx, doc)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		doc.Status = model.DocumentStatusFailed
		doc.Error = err.Error()
		// the caller's context may be the reason we failed
		if werr := s.docs.PutStatus(context.WithoutCancel(ctx), doc); werr != nil {
			log.Error("failed to record failed status", "error", werr)
		}
		return nil, err
	}

	doc.Status = model.DocumentStatusCompleted
	doc.Error = ""
	if err := s.docs.PutStatus(ctx, doc); err != nil {
		return nil, upstream("ledger write", err)
	}
	log.Info("document ingested", "chunks", chunks)
	return doc, nil
}

// Reingest runs the pipeline again for an existing ledger row.
func (s *DocumentService) Reingest(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ingest(ctx, doc); err != nil {
		s.logger.Error("reingestion failed", "document_id", doc.ID, "error", err)
		doc.Status = model.DocumentStatusFailed
		doc.Error = err.Error()
		if werr := s.docs.PutStatus(context.WithoutCancel(ctx), doc); werr != nil {
			s.logger.Error("failed to record failed status", "document_id", doc.ID, "error", werr)
		}
		return nil, err
	}
	doc.Status = model.DocumentStatusCompleted
	doc.Error = ""
	if err := s.docs.PutStatus(ctx, doc); err != nil {
		return nil, upstream("ledger write", err)
	}
	return doc, nil
}

func (s *DocumentService) ingest(ctx context.Context, doc *model.Document) (int, error) {
	data, err := s.store.Get(ctx, doc.URL)
	if err != nil {
		return 0, upstream("store download", err)
	}

	pages, err := s.extractor.Extract(ctx, data)
	if err != nil {
		if errors.Is(err, pdftext.ErrMalformed) {
			return 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return 0, upstream("extract text", err)
	}

	chunks := s.splitter.Split(pdftext.JoinPages(pages))
	if len(chunks) == 0 {
		s.logger.Warn("document has no extractable text", "document_id", doc.ID)
		if err := s.clearVectors(ctx, doc.ID); err != nil {
			return 0, err
		}
		return 0, nil
	}

	vectors, err := s.embedder.EmbedStrings(ctx, chunks)
	if err != nil {
		return 0, upstream("embed chunks", err)
	}
	if len(vectors) != len(chunks) {
		return 0, upstream("embed chunks", fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks)))
	}

	entries := make([]vectorindex.Entry, len(chunks))
	for i, text := range chunks {
		entries[i] = vectorindex.Entry{
			ID:     vectorindex.EntryID(doc.ID, i),
			Vector: vectors[i],
			Metadata: map[string]interface{}{
				vectorindex.MetaDocumentID: doc.ID,
				vectorindex.MetaURL:        doc.URL,
				vectorindex.MetaUserID:     doc.UserID,
				vectorindex.MetaText:       text,
			},
		}
	}
	// a previous version of the same key may have had more chunks
	if err := s.clearVectors(ctx, doc.ID); err != nil {
		return 0, err
	}
	if err := s.index.Upsert(ctx, entries); err != nil {
		return 0, upstream("vector upsert", err)
	}
	return len(entries), nil
}

func (s *DocumentService) clearVectors(ctx context.Context, documentID string) error {
	n, err := s.index.DeleteByDocument(ctx, documentID)
	if err != nil {
		return upstream("vector delete", err)
	}
	if n > 0 {
		s.logger.Info("replaced previous vectors", "document_id", documentID, "count", n)
	}
	return nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("document", id, err)
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, skip, limit int) ([]model.Document, int64, error) {
	docs, total, err := s.docs.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, upstream("list documents", err)
	}
	return docs, total, nil
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string, skip, limit int) ([]model.Document, int64, error) {
	docs, total, err := s.docs.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, 0, upstream("list documents", err)
	}
	return docs, total, nil
}

// Delete removes the ledger row of a document owned by userID. Its vectors
// stay in the index until VectorService.DeleteByDocument is called.
func (s *DocumentService) Delete(ctx context.Context, id, userID string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.UserID != userID {
		return fmt.Errorf("%w: document %s belongs to another user", ErrForbidden, id)
	}
	deleted, err := s.docs.Delete(ctx, id)
	if err != nil {
		return upstream("delete document", err)
	}
	if !deleted {
		return notFound("document", id)
	}
	return nil
}
