package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/churchcomm/admin-api/internal/handler"
	"github.com/churchcomm/admin-api/internal/model"
	messageService "github.com/churchcomm/admin-api/internal/service/message"
)

type Handler struct {
	service messageService.Service
}

func NewHandler(service messageService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	{
		messages.POST("", h.CreateMessage)
		messages.GET("", h.ListMessages)
		messages.GET("/scheduled", h.ListScheduled)
		messages.GET("/:id", h.GetMessage)
		messages.PUT("/:id", h.UpdateMessage)
		messages.DELETE("/:id", h.DeleteMessage)
	}
}

// createMessageResponse pairs the stored message with the adapter outcome
// of an immediate send.
type createMessageResponse struct {
	Message  *model.Message                 `json:"message"`
	Dispatch *messageService.DispatchResult `json:"dispatch,omitempty"`
}

func (h *Handler) CreateMessage(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var req model.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	msg, dispatch, err := h.service.Create(c.Request.Context(), churchID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(createMessageResponse{
		Message:  msg,
		Dispatch: dispatch,
	}))
}

func (h *Handler) ListMessages(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var filter model.MessageFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.BindError(c, err)
		return
	}

	messages, err := h.service.List(c.Request.Context(), churchID, &filter)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(messages))
}

func (h *Handler) ListScheduled(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	filter := &model.MessageFilter{Status: string(model.MessageStatusScheduled)}
	messages, err := h.service.List(c.Request.Context(), churchID, filter)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(messages))
}

func (h *Handler) GetMessage(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	msg, err := h.service.Get(c.Request.Context(), churchID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(msg))
}

func (h *Handler) UpdateMessage(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	msg, err := h.service.Update(c.Request.Context(), churchID, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(msg))
}

func (h *Handler) DeleteMessage(c *gin.Context) {
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
