package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/churchcomm/admin-api/internal/handler"
	"github.com/churchcomm/admin-api/internal/model"
	authService "github.com/churchcomm/admin-api/internal/service/auth"
)

type Handler struct {
	service authService.Service
}

func NewHandler(service authService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes mounts endpoints that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(res))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) Me(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	church, err := h.service.Me(c.Request.Context(), churchID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(church))
}
