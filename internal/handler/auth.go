package handler

import (
	"net/http"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/oauth"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * time.Minute
)

func (h *Handler) authLogin(c *gin.Context) {
	var input dto.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, service.ErrInvalidCredentials)
		return
	}

	token, sess, err := h.services.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	http.SetCookie(c.Writer, h.gate.Cookie(token))

	c.JSON(http.StatusOK, dto.SessionResponse{
		Token:   token,
		Session: *sess,
	})
}

func (h *Handler) authLogout(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	if err := h.services.Auth.Logout(c.Request.Context(), sess); err != nil {
		abortWithError(c, err)
		return
	}

	http.SetCookie(c.Writer, h.gate.ClearCookie())

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "logged out"))
}

func (h *Handler) authSession(c *gin.Context) {
	sess := h.getSessionFromRequest(c)

	c.JSON(http.StatusOK, dto.SessionResponse{
		Session: *sess,
	})
}

func (h *Handler) authGoogle(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, dto.NewBasicResponse(false, errGoogleNotConfigured.Error()))
		return
	}

	state := oauth.NewState()
	http.SetCookie(c.Writer, h.stateCookie(state, int(oauthStateMaxAge.Seconds())))

	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// authGoogleCallback finishes Google sign-in and sends the browser back to
// the client app with the session cookie set.
func (h *Handler) authGoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, dto.NewBasicResponse(false, errGoogleNotConfigured.Error()))
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	http.SetCookie(c.Writer, h.stateCookie("", -1))
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidOAuthState.Error()))
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidRequest.Error()))
		return
	}

	googleToken, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Sugar().Infof("google code exchange failed: %s", err.Error())
		abortWithError(c, service.ErrInvalidCredentials)
		return
	}

	token, _, err := h.services.Auth.GoogleLogin(c.Request.Context(), googleToken)
	if err != nil {
		abortWithError(c, err)
		return
	}

	http.SetCookie(c.Writer, h.gate.Cookie(token))

	c.Redirect(http.StatusFound, h.app.ClientOrigin)
}

func (h *Handler) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     oauthStateCookie,
		Value:    value,
		Path:     "/api/auth/google",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
