package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/pkg/response"
	"github.com/tgo/chariott/internal/service"
)

type BookingHandler struct {
	svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, booking)
}

func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, bookings)
}

func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler) Current(c *gin.Context) { h.window(c, h.svc.Current) }
func (h *BookingHandler) Past(c *gin.Context)    { h.window(c, h.svc.Past) }
func (h *BookingHandler) Future(c *gin.Context)  { h.window(c, h.svc.Future) }

func (h *BookingHandler) window(c *gin.Context, list func(context.Context, string) ([]model.Booking, error)) {
	bookings, err := list(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, bookings)
}

func (h *BookingHandler) Update(c *gin.Context) {
	var req service.UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "Booking deleted")
}
