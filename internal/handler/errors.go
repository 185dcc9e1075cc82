package handler

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

var (
	errNotAuthorized       = errors.New("user is not authorized")
	errSomethingWentWrong  = errors.New("something went wrong, please try again later")
	errInvalidRequest      = errors.New("invalid request")
	errGoogleNotConfigured = errors.New("google sign-in is not configured")
	errInvalidOAuthState   = errors.New("invalid oauth state")
)

// statusOf maps service and backend errors to the status and message the
// browser sees. Backend messages are passed through; anything unknown gets a
// generic message.
func statusOf(err error) (int, string) {
	var (
		validationErr *service.ValidationError
		httpErr       *apiclient.HTTPError
	)

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, errNotAuthorized.Error()
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrToggleInProgress):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrSuggestionsDisabled):
		return http.StatusServiceUnavailable, err.Error()
	case errors.As(err, &httpErr):
		if httpErr.Message == "" {
			return httpErr.Status, errSomethingWentWrong.Error()
		}
		return httpErr.Status, httpErr.Message
	default:
		return http.StatusInternalServerError, errSomethingWentWrong.Error()
	}
}

func abortWithError(c *gin.Context, err error) {
	status, details := statusOf(err)
	c.AbortWithStatusJSON(status, dto.NewBasicResponse(false, details))
}
