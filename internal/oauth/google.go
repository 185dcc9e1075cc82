// Package oauth runs the browser side of Google sign-in. The gateway only
// obtains a Google access token; the backend turns it into a user.
package oauth

import (
	"context"
	"errors"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrNoAccessToken = errors.New("google did not return an access token")

var scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type Google struct {
	config *oauth2.Config
}

// NewGoogle returns nil when no client id is configured.
func NewGoogle(cfg config.GoogleConfig) *Google {
	if !cfg.Enabled() {
		return nil
	}
	return NewGoogleWithEndpoint(cfg, google.Endpoint)
}

func NewGoogleWithEndpoint(cfg config.GoogleConfig, endpoint oauth2.Endpoint) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a Google access token.
func (g *Google) Exchange(ctx context.Context, code string) (string, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return token.AccessToken, nil
}

func NewState() string {
	return uuid.NewString()
}
