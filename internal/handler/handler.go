package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/oauth"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/BloggingApp/blog-gateway/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionKey = "session"

type Handler struct {
	logger   *zap.Logger
	services *service.Service
	gate     *session.Gate
	google   *oauth.Google
	app      config.AppConfig
}

// New wires the HTTP surface. google may be nil when Google sign-in is not
// configured.
func New(logger *zap.Logger, services *service.Service, gate *session.Gate, google *oauth.Google, app config.AppConfig) *Handler {
	return &Handler{
		logger:   logger,
		services: services,
		gate:     gate,
		google:   google,
		app:      app,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), requestLogger(h.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.app.ClientOrigin},
		AllowMethods:     []string{"POST", "GET", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.health)

		auth := api.Group("/auth")
		{
			auth.POST("/login", h.authLogin)
			auth.GET("/google", h.authGoogle)
			auth.GET("/google/callback", h.authGoogleCallback)
			auth.POST("/logout", h.authMiddleware, h.authLogout)
			auth.GET("/session", h.authMiddleware, h.authSession)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", h.notRequiredAuthMiddleware, h.postsGet)
			posts.POST("", h.authMiddleware, h.postsCreate)

			post := posts.Group("/:postID")
			{
				post.GET("", h.notRequiredAuthMiddleware, h.postsGetByID)
				post.PUT("/edit", h.authMiddleware, h.postsEdit)
				post.POST("/like", h.authMiddleware, h.postsLike)
				post.POST("/unlike", h.authMiddleware, h.postsUnlike)
				post.GET("/isLiked", h.authMiddleware, h.postsIsLiked)
				post.POST("/toggleLike", h.authMiddleware, h.postsToggleLike)

				post.GET("/comments", h.notRequiredAuthMiddleware, h.commentsGet)
				post.POST("/comments", h.authMiddleware, h.commentsCreate)
			}
		}

		users := api.Group("/users")
		{
			users.POST("", h.usersSignUp)
			users.GET("", h.authMiddleware, h.usersGet)

			user := users.Group("/:userID")
			{
				user.GET("", h.authMiddleware, h.usersGetByID)
				user.PATCH("", h.authMiddleware, h.usersUpdate)
				user.GET("/isFollowing", h.authMiddleware, h.usersIsFollowing)
				user.POST("/follow", h.authMiddleware, h.usersFollow)
				user.POST("/unfollow", h.authMiddleware, h.usersUnfollow)
				user.POST("/toggleFollow", h.authMiddleware, h.usersToggleFollow)
			}
		}

		api.POST("/ai-suggestions", h.authMiddleware, h.suggestionsCreate)
	}

	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "ok"))
}

func (h *Handler) getSessionFromRequest(c *gin.Context) *model.Session {
	sessReq, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}

	sess, ok := sessReq.(*model.Session)
	if !ok {
		return nil
	}

	return sess
}

// forwardedCookie is the browser's Cookie header without the cookies that
// belong to the gateway itself.
func (h *Handler) forwardedCookie(c *gin.Context) string {
	var parts []string
	for _, cookie := range c.Request.Cookies() {
		if cookie.Name == h.gate.CookieName() || cookie.Name == oauthStateCookie {
			continue
		}
		parts = append(parts, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(parts, "; ")
}
