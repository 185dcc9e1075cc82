package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/gin-gonic/gin"
)

func (h *Handler) usersSignUp(c *gin.Context) {
	var input dto.SignUpRequest
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

	user, err := h.services.User.SignUp(c.Request.Context(), model.UserInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  input.Password,
	}, image)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) usersGet(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	var input dto.GetUsersRequest
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	users, err := h.services.User.FindAll(c.Request.Context(), sess, h.forwardedCookie(c), input.Page, input.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *Handler) usersGetByID(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	user, err := h.services.User.FindByID(c.Request.Context(), sess, h.forwardedCookie(c), strings.TrimSpace(c.Param("userID")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) usersUpdate(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	var input dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	user, err := h.services.User.Update(c.Request.Context(), sess, strings.TrimSpace(c.Param("userID")), model.UserInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  input.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) usersIsFollowing(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	isFollowing, err := h.services.User.IsFollowing(c.Request.Context(), sess, strings.TrimSpace(c.Param("userID")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.IsFollowingResponse{IsFollowing: isFollowing})
}

func (h *Handler) usersFollow(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	if err := h.services.User.Follow(c.Request.Context(), sess, strings.TrimSpace(c.Param("userID"))); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "followed"))
}

func (h *Handler) usersUnfollow(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	if err := h.services.User.Unfollow(c.Request.Context(), sess, strings.TrimSpace(c.Param("userID"))); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "unfollowed"))
}

func (h *Handler) usersToggleFollow(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	following, err := h.services.User.ToggleFollow(c.Request.Context(), sess, strings.TrimSpace(c.Param("userID")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToggleFollowResponse{Following: following})
}
