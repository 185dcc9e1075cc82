package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/dto"
	"github.com/BloggingApp/blog-gateway/internal/oauth"
	"github.com/BloggingApp/blog-gateway/internal/repository/sqlite"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/BloggingApp/blog-gateway/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const clientOrigin = "http://localhost:3000"

func init() {
	gin.SetMode(gin.TestMode)
}

type backendCall struct {
	Method string
	Path   string
	Auth   string
	Cookie string
	Body   []byte
}

type backend struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	calls  []backendCall
	srv    *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{routes: map[string]func(w http.ResponseWriter, r *http.Request){}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, backendCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Cookie: r.Header.Get("Cookie"),
			Body:   body,
		})
		route, ok := b.routes[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if !ok {
			respond(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		route(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) on(method, path string, status int, response any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = func(w http.ResponseWriter, r *http.Request) {
		respond(w, status, response)
	}
}

func (b *backend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *backend) lastCall() backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type testEnv struct {
	backend *backend
	gate    *session.Gate
	router  *gin.Engine
}

func newTestEnv(t *testing.T, google *oauth.Google) *testEnv {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	gate := session.NewGate(store, config.SessionConfig{
		Secret:     "handler-test-secret-value",
		CookieName: "blog_session",
		MaxAge:     time.Hour,
	}, zap.NewNop())

	b := newBackend(t)
	b.on(http.MethodPost, "/auth/login", http.StatusOK, map[string]any{
		"id":    "u1",
		"name":  "Ada",
		"email": "ada@example.com",
		"token": "backend-token",
	})

	services := service.New(zap.NewNop(), service.Deps{
		Clients: apiclient.NewFactory(b.srv.URL, 5*time.Second),
		Gate:    gate,
	})
	h := New(zap.NewNop(), services, gate, google, config.AppConfig{Port: "8080", ClientOrigin: clientOrigin})

	return &testEnv{backend: b, gate: gate, router: h.InitRoutes()}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := e.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	return sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "blog_session" {
			return cookie
		}
	}
	require.FailNow(t, "no session cookie set")
	return nil
}

func oauthEndpoint(baseURL string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   baseURL + "/auth",
		TokenURL:  baseURL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.BasicResponse](t, rec).Ok)
}

func TestUnauthorizedRequestsMakeNoBackendCalls(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodPost, path: "/api/posts/p1/toggleLike"},
		{method: http.MethodPost, path: "/api/posts/p1/like"},
		{method: http.MethodPost, path: "/api/posts/p1/comments", body: `{"content":"hi"}`},
		{method: http.MethodPost, path: "/api/users/u2/toggleFollow"},
		{method: http.MethodGet, path: "/api/users"},
		{method: http.MethodGet, path: "/api/auth/session"},
		{method: http.MethodPost, path: "/api/ai-suggestions", body: `{"prompt":"hi"}`},
	}

	env := newTestEnv(t, nil)
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.AddCookie(&http.Cookie{Name: "blog_session", Value: "not-a-token"})

			rec := env.do(req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, decode[dto.BasicResponse](t, rec).Ok)
		})
	}
	assert.Zero(t, env.backend.callCount())
}

func TestLoginAndToggleLike(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.on(http.MethodGet, "/posts/p1/isLiked", http.StatusOK, map[string]bool{"isLiked": false})
	env.backend.on(http.MethodPost, "/posts/p1/like", http.StatusCreated, nil)

	cookie := env.login(t)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/p1/toggleLike", nil)
	req.AddCookie(cookie)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.ToggleLikeResponse](t, rec).Liked)

	call := env.backend.lastCall()
	assert.Equal(t, "/posts/p1/like", call.Path)
	assert.Equal(t, "Bearer backend-token", call.Auth)
	assert.Empty(t, call.Cookie)
}

func TestBearerSessionToken(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[dto.SessionResponse](t, rec).Token
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decode[dto.SessionResponse](t, rec).Session.UserID)
	assert.NotContains(t, rec.Body.String(), "backend-token")
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.on(http.MethodPost, "/auth/login", http.StatusUnauthorized, map[string]string{"message": "wrong password for ada"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, service.ErrInvalidCredentials.Error(), decode[dto.BasicResponse](t, rec).Details)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
}

func TestGetPostForwardsBrowserCookies(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.on(http.MethodGet, "/posts/p1", http.StatusOK, map[string]any{"id": "p1", "title": "Hello"})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/p1", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	req.AddCookie(&http.Cookie{Name: "blog_session", Value: "garbage"})
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	post := decode[dto.GetPost](t, rec)
	assert.Equal(t, "Hello", post.Title)
	assert.Nil(t, post.IsLiked)

	call := env.backend.lastCall()
	assert.Equal(t, "theme=dark", call.Cookie)
	assert.Empty(t, call.Auth)
}

func TestGetPostWithSessionAddsIsLiked(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.on(http.MethodGet, "/posts/p1", http.StatusOK, map[string]any{"id": "p1"})
	env.backend.on(http.MethodGet, "/posts/p1/isLiked", http.StatusOK, map[string]bool{"isLiked": true})
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/p1", nil)
	req.AddCookie(cookie)
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	post := decode[dto.GetPost](t, rec)
	require.NotNil(t, post.IsLiked)
	assert.True(t, *post.IsLiked)
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.on(http.MethodGet, "/posts", http.StatusForbidden, map[string]string{"message": "posts are private"})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/posts/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/posts?page=2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "posts are private", decode[dto.BasicResponse](t, rec).Details)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/posts?page=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentsTree(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.on(http.MethodGet, "/comments", http.StatusOK, []map[string]any{
		{"id": "c2", "details": "reply", "parentCommentId": "c1"},
		{"id": "c1", "details": "root"},
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/posts/p1/comments", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var tree []struct {
		ID          string `json:"id"`
		SubComments []struct {
			ID string `json:"id"`
		} `json:"subComments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, "c1", tree[0].ID)
	require.Len(t, tree[0].SubComments, 1)
	assert.Equal(t, "c2", tree[0].SubComments[0].ID)
}

func TestCommentCreateBlankContent(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)
	calls := env.backend.callCount()

	req := httptest.NewRequest(http.MethodPost, "/api/posts/p1/comments", strings.NewReader(`{"content":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, calls, env.backend.callCount())
}

func TestCreatePostMultipart(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.on(http.MethodPost, "/posts", http.StatusCreated, map[string]any{"id": "p9", "title": "Hello"})
	cookie := env.login(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "Hello"))
	require.NoError(t, writer.WriteField("content", "World"))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(cookie)
	rec := env.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	sent := string(env.backend.lastCall().Body)
	assert.Contains(t, sent, `filename="cover.png"`)
	assert.Contains(t, sent, "Content-Type: image/png")
	assert.Contains(t, sent, "Hello")
}

func TestGoogleNotConfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoogleSignIn(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"access_token": "google-token", "token_type": "Bearer", "expires_in": 3600})
	}))
	defer tokenServer.Close()

	google := oauth.NewGoogleWithEndpoint(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/auth/google/callback",
	}, oauthEndpoint(tokenServer.URL))
	env := newTestEnv(t, google)
	env.backend.on(http.MethodPost, "/auth/google", http.StatusOK, map[string]any{"id": "u7", "token": "backend-token"})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	var state *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == oauthStateCookie {
			state = cookie
		}
	}
	require.NotNil(t, state)
	assert.Contains(t, rec.Header().Get("Location"), "state="+state.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(state)
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state="+state.Value, nil)
	req.AddCookie(state)
	rec = env.do(req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, clientOrigin, rec.Header().Get("Location"))
	assert.NotEmpty(t, sessionCookie(t, rec).Value)
	assert.JSONEq(t, `{"token":"google-token"}`, string(env.backend.lastCall().Body))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "unauthorized", err: service.ErrUnauthorized, status: http.StatusUnauthorized},
		{name: "validation", err: &service.ValidationError{Field: "content", Message: "content is required"}, status: http.StatusBadRequest},
		{name: "not found", err: service.ErrNotFound, status: http.StatusNotFound},
		{name: "credentials", err: service.ErrInvalidCredentials, status: http.StatusUnauthorized},
		{name: "toggle", err: service.ErrToggleInProgress, status: http.StatusConflict},
		{name: "suggestions off", err: service.ErrSuggestionsDisabled, status: http.StatusServiceUnavailable},
		{name: "backend", err: &apiclient.HTTPError{Status: http.StatusTeapot, Message: "short and stout"}, status: http.StatusTeapot},
		{name: "internal", err: service.ErrInternal, status: http.StatusInternalServerError},
		{name: "unknown", err: io.ErrUnexpectedEOF, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, details := statusOf(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, details)
		})
	}

	_, details := statusOf(io.ErrUnexpectedEOF)
	assert.Equal(t, errSomethingWentWrong.Error(), details)
}
