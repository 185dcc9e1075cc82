// Package session resolves who is calling. A session token (an HS256 JWT
// carrying the session id) arrives in the session cookie or as a bearer
// token; the session it names is looked up in the session store on every
// request, so sign-out and expiry take effect immediately.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoSession    = errors.New("no valid session")
	ErrMissingToken = errors.New("backend did not return an access token")
)

type Store interface {
	Create(ctx context.Context, session model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Gate struct {
	store      Store
	secret     []byte
	cookieName string
	maxAge     time.Duration
	secure     bool
	logger     *zap.Logger
	now        func() time.Time
}

func NewGate(store Store, cfg config.SessionConfig, logger *zap.Logger) *Gate {
	return &Gate{
		store:      store,
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.Secure,
		logger:     logger,
		now:        time.Now,
	}
}

func (g *Gate) CookieName() string {
	return g.cookieName
}

// Resolve returns ErrNoSession when the request carries no token, no token
// verifies, or the sessions they name are gone or expired. The cookie is
// tried first and the bearer token second, so a stale cookie does not hide a
// valid bearer token. Any other error comes from the session store.
func (g *Gate) Resolve(ctx context.Context, r *http.Request) (*model.Session, error) {
	for _, token := range g.tokensFromRequest(r) {
		session, err := g.resolveToken(ctx, token)
		if errors.Is(err, ErrNoSession) {
			continue
		}
		return session, err
	}

	return nil, ErrNoSession
}

func (g *Gate) resolveToken(ctx context.Context, token string) (*model.Session, error) {
	claims, err := g.parse(token)
	if err != nil {
		return nil, ErrNoSession
	}

	session, err := g.store.FindByID(ctx, claims.ID)
	if err != nil {
		g.logger.Sugar().Errorf("failed to find session(%s): %s", claims.ID, err.Error())
		return nil, err
	}
	if session == nil || session.UserID != claims.Subject || session.Expired(g.now()) {
		return nil, ErrNoSession
	}

	return session, nil
}

// Issue stores a new session for a successful backend sign-in and returns the
// signed token to hand to the browser.
func (g *Gate) Issue(ctx context.Context, signIn model.SignIn) (string, *model.Session, error) {
	if signIn.Token == "" {
		return "", nil, ErrMissingToken
	}

	now := g.now()
	session := model.Session{
		ID:          uuid.NewString(),
		UserID:      signIn.ID,
		Name:        signIn.Name,
		Email:       signIn.Email,
		Role:        signIn.Role,
		ImageURL:    signIn.ImageURL,
		AccessToken: signIn.Token,
		CreatedAt:   now,
		ExpiresAt:   now.Add(g.maxAge),
	}

	if err := g.store.Create(ctx, session); err != nil {
		g.logger.Sugar().Errorf("failed to create session for user(%s): %s", session.UserID, err.Error())
		return "", nil, err
	}

	token, err := g.sign(session)
	if err != nil {
		return "", nil, err
	}

	return token, &session, nil
}

func (g *Gate) Revoke(ctx context.Context, sessionID string) error {
	if err := g.store.Delete(ctx, sessionID); err != nil {
		g.logger.Sugar().Errorf("failed to delete session(%s): %s", sessionID, err.Error())
		return err
	}
	return nil
}

func (g *Gate) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     g.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (g *Gate) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     g.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// StartCleanup deletes expired sessions every interval until ctx is done.
func (g *Gate) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := g.store.DeleteExpired(ctx, g.now()); err != nil {
				g.logger.Sugar().Errorf("failed to delete expired sessions: %s", err.Error())
			}
		}
	}
}

func (g *Gate) tokensFromRequest(r *http.Request) []string {
	var tokens []string
	if cookie, err := r.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

func (g *Gate) sign(session model.Session) (string, error) {
	claims := Claims{
		Name:  session.Name,
		Email: session.Email,
		Role:  session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (g *Gate) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}
