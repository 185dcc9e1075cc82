package handler

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/session"
	"github.com/gin-gonic/gin"
)

func (h *Handler) authMiddleware(c *gin.Context) {
	sess, err := h.gate.Resolve(c.Request.Context(), c.Request)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewBasicResponse(false, errNotAuthorized.Error()))
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewBasicResponse(false, errSomethingWentWrong.Error()))
		return
	}

	c.Set(sessionKey, sess)

	c.Next()
}

// notRequiredAuthMiddleware attaches the session when there is one and lets
// the request through anonymously otherwise.
func (h *Handler) notRequiredAuthMiddleware(c *gin.Context) {
	sess, err := h.gate.Resolve(c.Request.Context(), c.Request)
	if err != nil {
		c.Next()
		return
	}

	c.Set(sessionKey, sess)

	c.Next()
}
