package contact

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/handler"
	"github.com/churchcomm/admin-api/internal/model"
	contactService "github.com/churchcomm/admin-api/internal/service/contact"
)

type Handler struct {
	service contactService.Service
}

func NewHandler(service contactService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	contacts := r.Group("/contacts")
	{
		contacts.POST("", h.CreateContact)
		contacts.GET("", h.ListContacts)
		contacts.GET("/:id", h.GetContact)
		contacts.PUT("/:id", h.UpdateContact)
		contacts.DELETE("/:id", h.DeleteContact)
		contacts.POST("/bulk", h.BulkImport)
		contacts.POST("/bulk-delete", h.BulkDelete)
	}
}

func (h *Handler) CreateContact(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var req model.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	contact, err := h.service.Create(c.Request.Context(), churchID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(contact))
}

func (h *Handler) ListContacts(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	contacts, err := h.service.List(c.Request.Context(), churchID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(contacts))
}

func (h *Handler) GetContact(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	contact, err := h.service.Get(c.Request.Context(), churchID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(contact))
}

func (h *Handler) UpdateContact(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	contact, err := h.service.Update(c.Request.Context(), churchID, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(contact))
}

func (h *Handler) DeleteContact(c *gin.Context) {
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

func (h *Handler) BulkImport(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var req model.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	result, err := h.service.BulkImport(c.Request.Context(), churchID, req.Contacts)
	if err != nil {
		handler.Error(c, err)
		return
	}

	// partial success still reports 200 with the per-row breakdown
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

func (h *Handler) BulkDelete(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contact id"))
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.service.DeleteBatch(c.Request.Context(), churchID, ids)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": deleted}))
}
