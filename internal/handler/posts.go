package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) postsGet(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	var input dto.GetPostsRequest
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	posts, err := h.services.Post.FindAll(c.Request.Context(), sess, h.forwardedCookie(c), service.PostsQuery{
		Page:     input.Page,
		Limit:    input.Limit,
		AuthorID: strings.TrimSpace(input.AuthorID),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *Handler) postsCreate(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	var input dto.CreatePostRequest
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	image, closeImage, err := uploadFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}
	defer closeImage()

	createdPost, err := h.services.Post.Create(c.Request.Context(), sess, model.PostInput{
		Title:   input.Title,
		Content: input.Content,
		Image:   image,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdPost)
}

// postsGetByID adds isLiked for signed-in callers.
func (h *Handler) postsGetByID(c *gin.Context) {
	sess := h.getSessionFromRequest(c)
	postID := strings.TrimSpace(c.Param("postID"))

	post, err := h.services.Post.FindByID(c.Request.Context(), sess, h.forwardedCookie(c), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	postDto := dto.GetPost{
		Post: *post,
	}

	if sess != nil {
		isLiked, err := h.services.Post.IsLiked(c.Request.Context(), sess, postID)
		if err == nil {
			postDto.IsLiked = &isLiked
		}
	}

	c.JSON(http.StatusOK, postDto)
}

func (h *Handler) postsEdit(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	var input dto.EditPostRequest
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	image, closeImage, err := uploadFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}
	defer closeImage()

	updatedPost, err := h.services.Post.Update(c.Request.Context(), sess, strings.TrimSpace(c.Param("postID")), model.PostInput{
		Title:   input.Title,
		Content: input.Content,
		Image:   image,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updatedPost)
}

func (h *Handler) postsLike(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	if err := h.services.Post.Like(c.Request.Context(), sess, strings.TrimSpace(c.Param("postID"))); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "liked"))
}

func (h *Handler) postsUnlike(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	if err := h.services.Post.Unlike(c.Request.Context(), sess, strings.TrimSpace(c.Param("postID"))); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "unliked"))
}

func (h *Handler) postsIsLiked(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	isLiked, err := h.services.Post.IsLiked(c.Request.Context(), sess, strings.TrimSpace(c.Param("postID")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.IsLikedResponse{IsLiked: isLiked})
}

func (h *Handler) postsToggleLike(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	liked, err := h.services.Post.ToggleLike(c.Request.Context(), sess, strings.TrimSpace(c.Param("postID")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToggleLikeResponse{Liked: liked})
}
