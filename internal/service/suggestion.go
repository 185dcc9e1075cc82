package service

import (
	"context"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Completer is the part of *openai.Client the suggestion service uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func NewCompleter(cfg config.AIConfig) Completer {
	if cfg.APIKey == "" {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

type suggestionService struct {
	logger    *zap.Logger
	completer Completer
	cfg       config.AIConfig
}

func newSuggestionService(logger *zap.Logger, completer Completer, cfg config.AIConfig) Suggestion {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	return &suggestionService{
		logger:    logger,
		completer: completer,
		cfg:       cfg,
	}
}

func (s *suggestionService) Suggest(ctx context.Context, sess *model.Session, prompt string) (string, error) {
	if err := requireSession(sess); err != nil {
		return "", err
	}

	if blank(prompt) {
		return "", newValidationError("prompt", "prompt is required")
	}

	if s.completer == nil {
		return "", ErrSuggestionsDisabled
	}

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to generate suggestion for user(%s): %s", sess.UserID, err.Error())
		return "", ErrInternal
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
