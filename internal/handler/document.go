package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/middleware"
	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/pkg/response"
	"github.com/tgo/chariott/internal/service"
)

type DocumentHandler struct {
	svc           *service.DocumentService
	maxUploadSize int64
}

func NewDocumentHandler(svc *service.DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{svc: svc, maxUploadSize: maxUploadSize}
}

type DocumentResponse struct {
	DocumentID       string               `json:"document_id"`
	Tenant           string               `json:"tenant"`
	Hotel            string               `json:"hotel,omitempty"`
	DocumentName     string               `json:"document_name"`
	URL              string               `json:"url"`
	UserID           string               `json:"user_id"`
	ProcessingStatus model.DocumentStatus `json:"processing_status"`
	Error            string               `json:"error,omitempty"`
	CreatedAt        string               `json:"created_at"`
}

func toDocumentResponse(d *model.Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:       d.ID,
		Tenant:           d.Tenant,
		Hotel:            d.Hotel,
		DocumentName:     d.FileName,
		URL:              d.URL,
		UserID:           d.UserID,
		ProcessingStatus: d.Status,
		Error:            d.Error,
		CreatedAt:        d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toDocumentResponses(docs []model.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i])
	}
	return out
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if !service.IsPDF(header.Filename) {
		response.BadRequest(c, "Only PDF files are supported")
		return
	}

	tenant := c.PostForm("tenant_id")
	if tenant == "" {
		tenant = c.PostForm("chain_id")
	}
	if tenant == "" {
		response.BadRequest(c, "tenant_id is required")
		return
	}

	doc, err := h.svc.Upload(c.Request.Context(), service.UploadInput{
		Tenant:      tenant,
		Hotel:       c.PostForm("hotel_id"),
		FileName:    header.Filename,
		UserID:      middleware.UserID(c),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, toDocumentResponse(doc))
}

func (h *DocumentHandler) List(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}
	docs, total, err := h.svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, toDocumentResponses(docs), total, skip, limit)
}

func (h *DocumentHandler) ListMine(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}
	docs, total, err := h.svc.ListByUser(c.Request.Context(), middleware.UserID(c), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, toDocumentResponses(docs), total, skip, limit)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, toDocumentResponse(doc))
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "Document "+id+" deleted")
}

type VectorHandler struct {
	svc *service.VectorService
}

func NewVectorHandler(svc *service.VectorService) *VectorHandler {
	return &VectorHandler{svc: svc}
}

func (h *VectorHandler) DeleteByDocument(c *gin.Context) {
	res, err := h.svc.DeleteByDocument(c.Request.Context(), c.Param("document_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}
