package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) commentsGet(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	comments, err := h.services.Comment.Tree(c.Request.Context(), sess, strings.TrimSpace(c.Param("postID")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *Handler) commentsCreate(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	var input dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), sess, strings.TrimSpace(c.Param("postID")), input.Content, input.ParentCommentID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
