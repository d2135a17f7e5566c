package group

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/churchcomm/admin-api/internal/handler"
	"github.com/churchcomm/admin-api/internal/model"
	groupService "github.com/churchcomm/admin-api/internal/service/group"
)

type Handler struct {
	service groupService.Service
}

func NewHandler(service groupService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	groups := r.Group("/groups")
	{
		groups.POST("", h.CreateGroup)
		groups.GET("", h.ListGroups)
		groups.GET("/:id", h.GetGroup)
		groups.PUT("/:id", h.UpdateGroup)
		groups.DELETE("/:id", h.DeleteGroup)
	}
}

func (h *Handler) CreateGroup(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var req model.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	group, err := h.service.Create(c.Request.Context(), churchID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(group))
}

func (h *Handler) ListGroups(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	groups, err := h.service.List(c.Request.Context(), churchID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(groups))
}

func (h *Handler) GetGroup(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	group, err := h.service.Get(c.Request.Context(), churchID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(group))
}

func (h *Handler) UpdateGroup(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	group, err := h.service.Update(c.Request.Context(), churchID, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(group))
}

func (h *Handler) DeleteGroup(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), churchID, id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
