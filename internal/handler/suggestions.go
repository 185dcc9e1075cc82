package handler

import (
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) suggestionsCreate(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	var input dto.SuggestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	text, err := h.services.Suggestion.Suggest(c.Request.Context(), sess, input.Prompt)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuggestionResponse{Text: text})
}
