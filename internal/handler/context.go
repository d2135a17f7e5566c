package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextChurchID is the context key under which the auth middleware
// stores the authenticated tenant.
const ContextChurchID = "church_id"

// ChurchID returns the authenticated church id or aborts with 401.
func ChurchID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextChurchID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse("not authenticated"))
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse("not authenticated"))
		return uuid.Nil, false
	}
	return id, true
}

// PathID parses the named uuid path parameter or aborts with 400.
func PathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
