package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/pkg/response"
	"github.com/tgo/chariott/internal/service"
)

type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	sr, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, sr)
}

func (h *RequestHandler) Get(c *gin.Context) {
	sr, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, sr)
}

func (h *RequestHandler) Update(c *gin.Context) {
	var req service.UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	sr, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, sr)
}

func (h *RequestHandler) ListByHotel(c *gin.Context) {
	reqs, err := h.svc.ListByHotel(c.Request.Context(), c.Param("hotel_id"), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, reqs)
}

func (h *RequestHandler) ListByUser(c *gin.Context) {
	reqs, err := h.svc.ListByUser(c.Request.Context(), c.Param("user_id"), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, reqs)
}

func (h *RequestHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultRequestLimit)))
	if err != nil {
		response.BadRequest(c, "limit must be an integer")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		response.BadRequest(c, "offset must be an integer")
		return
	}

	reqs, total, err := h.svc.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, reqs, total, offset, limit)
}
