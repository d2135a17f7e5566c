package birthday

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/churchcomm/admin-api/internal/handler"
	"github.com/churchcomm/admin-api/internal/model"
	birthdayService "github.com/churchcomm/admin-api/internal/service/birthday"
)

type Handler struct {
	service birthdayService.Service
}

func NewHandler(service birthdayService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	birthdays := r.Group("/birthdays")
	{
		birthdays.GET("/config", h.GetConfig)
		birthdays.PUT("/config", h.UpsertConfig)
		birthdays.DELETE("/config", h.DeleteConfig)
		birthdays.GET("/today", h.ListToday)
		birthdays.GET("/month", h.ListMonth)
		birthdays.GET("/upcoming", h.ListUpcoming)
		birthdays.POST("/test-send", h.TestSend)
	}
}

func (h *Handler) GetConfig(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	config, err := h.service.GetConfig(c.Request.Context(), churchID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(config))
}

func (h *Handler) UpsertConfig(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var req model.UpsertBirthdayConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	config, err := h.service.UpsertConfig(c.Request.Context(), churchID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(config))
}

func (h *Handler) DeleteConfig(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteConfig(c.Request.Context(), churchID); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListToday(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	contacts, err := h.service.ListToday(c.Request.Context(), churchID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(contacts))
}

func (h *Handler) ListMonth(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	month := int(time.Now().Month())
	if raw := c.Query("month"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid month"))
			return
		}
		month = n
	}

	contacts, err := h.service.ListMonth(c.Request.Context(), churchID, time.Month(month))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(contacts))
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	contacts, err := h.service.ListUpcoming(c.Request.Context(), churchID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(contacts))
}

func (h *Handler) TestSend(c *gin.Context) {
	churchID, ok := handler.ChurchID(c)
	if !ok {
		return
	}

	var req model.BirthdayTestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	if err := h.service.TestSend(c.Request.Context(), churchID, &req); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"sent": true}))
}
