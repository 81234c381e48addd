package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/pkg/response"
	"github.com/tgo/chariott/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest

	// form posts (OAuth2 password flow) use "username" for the email
	if ct := c.ContentType(); ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		req.Email = c.PostForm("username")
		req.Password = c.PostForm("password")
		if req.Email == "" || req.Password == "" {
			response.BadRequest(c, "username and password are required")
			return
		}
	} else if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, resp)
}

func (h *UserHandler) List(c *gin.Context) {
	h.list(c, "")
}

func (h *UserHandler) ListStaff(c *gin.Context) {
	h.list(c, model.UserTypeStaff)
}

func (h *UserHandler) ListNormal(c *gin.Context) {
	h.list(c, model.UserTypeNormal)
}

func (h *UserHandler) list(c *gin.Context, userType model.UserType) {
	var (
		users []model.User
		err   error
	)
	if userType == "" {
		users, err = h.svc.List(c.Request.Context())
	} else {
		users, err = h.svc.ListByType(c.Request.Context(), userType)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "User deleted")
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.svc.GetPreferences(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, prefs)
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	var prefs model.JSONMap
	if !bindJSON(c, &prefs) {
		return
	}
	updated, err := h.svc.UpdatePreferences(c.Request.Context(), c.Param("id"), prefs)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, updated)
}

func (h *UserHandler) Interactions(c *gin.Context) {
	id := c.Param("id")
	n, err := h.svc.Interactions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": id, "interaction_counter": n})
}
