package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/session"
	"go.uber.org/zap"
)

type authService struct {
	logger  *zap.Logger
	clients *apiclient.Factory
	gate    *session.Gate
}

func newAuthService(logger *zap.Logger, clients *apiclient.Factory, gate *session.Gate) Auth {
	return &authService{
		logger:  logger,
		clients: clients,
		gate:    gate,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

// Login never tells the caller which of email or password was wrong.
func (s *authService) Login(ctx context.Context, email string, password string) (string, *model.Session, error) {
	if blank(email) || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	var signIn model.SignIn
	if err := s.clients.New("", "").Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &signIn); err != nil {
		return "", nil, s.signInError("credentials", err)
	}

	return s.issue(ctx, signIn)
}

func (s *authService) GoogleLogin(ctx context.Context, googleAccessToken string) (string, *model.Session, error) {
	if googleAccessToken == "" {
		return "", nil, ErrInvalidCredentials
	}

	var signIn model.SignIn
	if err := s.clients.New("", "").Post(ctx, "/auth/google", googleLoginRequest{Token: googleAccessToken}, &signIn); err != nil {
		return "", nil, s.signInError("google", err)
	}

	return s.issue(ctx, signIn)
}

func (s *authService) Logout(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}

	if err := s.gate.Revoke(ctx, sess.ID); err != nil {
		return ErrInternal
	}

	return nil
}

func (s *authService) issue(ctx context.Context, signIn model.SignIn) (string, *model.Session, error) {
	token, sess, err := s.gate.Issue(ctx, signIn)
	if err != nil {
		if errors.Is(err, session.ErrMissingToken) {
			s.logger.Sugar().Errorf("backend sign-in for user(%s) returned no token", signIn.ID)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, ErrInternal
	}

	return token, sess, nil
}

// signInError hides every sign-in failure behind ErrInvalidCredentials.
// Backend outages are still logged as errors so they are not mistaken for a
// bad password when reading the logs.
func (s *authService) signInError(provider string, err error) error {
	status := apiclient.StatusOf(err)
	if status != 0 && status < http.StatusInternalServerError {
		s.logger.Sugar().Infof("%s sign-in rejected by backend with status %d", provider, status)
		return ErrInvalidCredentials
	}

	s.logger.Sugar().Errorf("failed to sign in with %s: %s", provider, err.Error())
	return ErrInvalidCredentials
}
