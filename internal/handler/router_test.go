package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgo/chariott/internal/app"
	"github.com/tgo/chariott/internal/config"
	"github.com/tgo/chariott/internal/database"
	"github.com/tgo/chariott/internal/pkg/objectstore"
	"github.com/tgo/chariott/internal/pkg/vectorindex"
	"github.com/tgo/chariott/internal/service"
)

const testAPIKey = "test-key"

type countingStore struct {
	objectstore.Store
	mu   sync.Mutex
	puts int
}

func (s *countingStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.Store.Put(ctx, key, r, size, contentType)
}

type stubExtractor struct {
	mu    sync.Mutex
	calls int
}

func (e *stubExtractor) Extract(context.Context, []byte) ([]string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return []string{"Breakfast is served from 7am to 10am in the garden room."}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0, 0.5}
	}
	return out, nil
}

type stubChatModel struct{}

func (stubChatModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage("Breakfast runs 7am to 10am.", nil), nil
}

func (stubChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

type testServer struct {
	router    *gin.Engine
	store     *countingStore
	extractor *stubExtractor
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	local, err := objectstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		GinMode:              gin.TestMode,
		APIKey:               testAPIKey,
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		AccessTokenExpireMin: 60,
		TrustUserHeader:      true,
		MaxUploadSize:        1 << 20,
		RAGTopK:              3,
		ChunkSize:            1000,
		ChunkOverlap:         200,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	ts := &testServer{
		store:     &countingStore{Store: local},
		extractor: &stubExtractor{},
	}
	a, err := app.Assemble(context.Background(), cfg, app.Clients{
		DB:        db,
		Store:     ts.store,
		Extractor: ts.extractor,
		Embedder:  stubEmbedder{},
		Index:     vectorindex.NewMemoryIndex(),
		ChatModel: stubChatModel{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ts.router = SetupRouter(cfg, a)
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("X-API-Key", testAPIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) doJSON(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return ts.do(t, req, headers)
}

func (ts *testServer) upload(t *testing.T, fileName, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("tenant_id", "chain-1"))
	require.NoError(t, mw.WriteField("hotel_id", "hotel-1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(t, req, map[string]string{"X-User-ID": userID})
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestPublicRoutes(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/", "/health", "/live", "/ready"} {
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestAPIKeyGuardsRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hotels", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/hotels", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	unset := newTestServer(t, func(cfg *config.Config) { cfg.APIKey = "" })
	w = httptest.NewRecorder()
	unset.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hotels", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInsecureAuthSkipsAPIKey(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.APIKey = ""
		cfg.InsecureAuth = true
	})

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hotels", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// identity is still enforced where an owner is needed
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/vectors/doc-1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	ts := newTestServer(t)

	w := ts.upload(t, "notes.txt", "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Only PDF files are supported")
	assert.Zero(t, ts.store.puts)
	assert.Zero(t, ts.extractor.calls)
}

func TestUpload_RequiresUser(t *testing.T) {
	ts := newTestServer(t)

	w := ts.upload(t, "guide.pdf", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, ts.store.puts)
}

func TestDocumentLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.upload(t, "guide.pdf", "u1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc DocumentResponse
	decode(t, w, &doc)
	assert.Equal(t, "chain-1", doc.Tenant)
	assert.Equal(t, "hotel-1", doc.Hotel)
	assert.Equal(t, "u1", doc.UserID)
	assert.EqualValues(t, "completed", doc.ProcessingStatus)
	assert.NotEmpty(t, doc.DocumentID)

	w = ts.doJSON(t, http.MethodGet, "/documents/user", nil, map[string]string{"X-User-ID": "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data       []DocumentResponse `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
			Limit int   `json:"limit"`
		} `json:"pagination"`
	}
	decode(t, w, &page)
	assert.Len(t, page.Data, 1)
	assert.EqualValues(t, 1, page.Pagination.Total)
	assert.Equal(t, 10, page.Pagination.Limit)

	w = ts.doJSON(t, http.MethodGet, "/documents?limit=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.doJSON(t, http.MethodDelete, "/documents/"+doc.DocumentID, nil, map[string]string{"X-User-ID": "u2"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.doJSON(t, http.MethodDelete, "/documents/"+doc.DocumentID, nil, map[string]string{"X-User-ID": "u1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/documents/"+doc.DocumentID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// ledger deletion leaves the vectors for explicit cleanup
	w = ts.doJSON(t, http.MethodDelete, "/vectors/"+doc.DocumentID, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doJSON(t, http.MethodDelete, "/vectors/"+doc.DocumentID, nil, map[string]string{"X-User-ID": "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	var res service.DeleteResult
	decode(t, w, &res)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, "Deleted 1 vectors for document_id "+doc.DocumentID, res.Message)
}

func TestRegisterLoginAndBearerIdentity(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/auth/register", map[string]string{
		"email": "guest@example.com", "password": "s3cret-pass", "user_type": "normal",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.doJSON(t, http.MethodPost, "/auth/register", map[string]string{
		"email": "guest@example.com", "password": "s3cret-pass", "user_type": "normal",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.doJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "guest@example.com", "password": "wrong-pass",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "guest@example.com", "password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tok service.TokenResponse
	decode(t, w, &tok)
	assert.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)

	w = ts.doJSON(t, http.MethodGet, "/documents/user", nil, map[string]string{"Authorization": "Bearer " + tok.AccessToken})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/documents/user", nil, map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/users/"+tok.User.ID+"/interactions", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"interaction_counter":1`)
}

func TestChatRecordsInteraction(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.upload(t, "guide.pdf", "u1").Code)

	w := ts.doJSON(t, http.MethodPost, "/rag/chat", map[string]string{"query": "When is breakfast?"},
		map[string]string{"X-User-ID": "u1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var answer struct {
		Response string `json:"response"`
		Sources  []struct {
			DocumentID string `json:"document_id"`
		} `json:"sources"`
	}
	decode(t, w, &answer)
	assert.Equal(t, "Breakfast runs 7am to 10am.", answer.Response)
	assert.NotEmpty(t, answer.Sources)

	w = ts.doJSON(t, http.MethodGet, "/rag/interactions/user/u1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "When is breakfast?")

	w = ts.doJSON(t, http.MethodPost, "/rag/chat", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceRequestListing(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodGet, "/requests?limit=101", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/requests?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/requests", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"limit":50`)

	w = ts.doJSON(t, http.MethodGet, "/hotels/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportInteractions(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodGet, "/analytics/interactions/export", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.XLSXContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename="))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}
