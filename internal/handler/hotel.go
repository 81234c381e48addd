package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/pkg/response"
	"github.com/tgo/chariott/internal/service"
)

type HotelHandler struct {
	svc *service.HotelService
}

func NewHotelHandler(svc *service.HotelService) *HotelHandler {
	return &HotelHandler{svc: svc}
}

func (h *HotelHandler) Create(c *gin.Context) {
	var req service.CreateHotelRequest
	if !bindJSON(c, &req) {
		return
	}
	hotel, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, hotel)
}

func (h *HotelHandler) List(c *gin.Context) {
	hotels, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, hotels)
}

func (h *HotelHandler) Get(c *gin.Context) {
	hotel, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, hotel)
}

func (h *HotelHandler) Update(c *gin.Context) {
	var req service.UpdateHotelRequest
	if !bindJSON(c, &req) {
		return
	}
	hotel, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, hotel)
}

func (h *HotelHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "Hotel deleted")
}
