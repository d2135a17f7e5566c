package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/churchcomm/admin-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes err as a JSON response with the status matching its code.
// Unknown errors become a generic 500 so internals never leak.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp := NewErrorResponse(appErr.Message)
		resp.Fields = appErr.Fields
		c.JSON(statusFor(appErr.Code), resp)
		return
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		resp := NewErrorResponse("validation failed")
		for _, fe := range vErrs {
			resp.Fields = append(resp.Fields, fe.Field())
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

// BindError reports a request decoding or validation failure.
func BindError(c *gin.Context, err error) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		Error(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request body"))
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrConflict:
		return http.StatusConflict
	case apperrors.ErrGateway, apperrors.ErrNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
