package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/middleware"
	"github.com/tgo/chariott/internal/pkg/response"
	"github.com/tgo/chariott/internal/service"
)

type RAGHandler struct {
	interactions    *service.InteractionService
	recommendations *service.RecommendationService
	export          *service.ExportService
}

func NewRAGHandler(interactions *service.InteractionService, recommendations *service.RecommendationService, export *service.ExportService) *RAGHandler {
	return &RAGHandler{interactions: interactions, recommendations: recommendations, export: export}
}

func (h *RAGHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	answer, err := h.interactions.Chat(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, answer)
}

func (h *RAGHandler) CreateInteraction(c *gin.Context) {
	var req service.CreateInteractionRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := h.interactions.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, in)
}

func (h *RAGHandler) GetInteraction(c *gin.Context) {
	in, err := h.interactions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, in)
}

func (h *RAGHandler) ListUserInteractions(c *gin.Context) {
	out, err := h.interactions.ListByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *RAGHandler) TopUserRecommendations(c *gin.Context) {
	var req service.RecommendationRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.recommendations.Recommend(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, resp)
}

func (h *RAGHandler) AnalyzeUserInteractions(c *gin.Context) {
	var req service.InteractionAnalysisRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.recommendations.AnalyzeInteractions(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, resp)
}

func (h *RAGHandler) ExportInteractions(c *gin.Context) {
	data, err := h.export.InteractionsXLSX(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	name := fmt.Sprintf("interactions-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, service.XLSXContentType, data)
}
