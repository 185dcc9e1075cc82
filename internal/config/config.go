package config

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

func (c DBConfig) URL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.Username, c.Password, c.Host, c.Port, c.DBName, sslMode)
}

type ServerConfig struct {
	Port           string
	Handler        http.Handler
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type AppConfig struct {
	Port         string `validate:"required,numeric"`
	ClientOrigin string `validate:"required,url"`
}

type APIConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

type SessionConfig struct {
	Secret          string        `validate:"required,min=16"`
	CookieName      string        `validate:"required"`
	MaxAge          time.Duration `validate:"gt=0"`
	Secure          bool
	Store           string        `validate:"oneof=postgres sqlite"`
	SQLitePath      string        `validate:"required_if=Store sqlite"`
	CleanupInterval time.Duration `validate:"gt=0"`
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string `validate:"required_with=ClientID"`
	RedirectURL  string `validate:"omitempty,url"`
}

func (c GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

type AIConfig struct {
	APIKey      string
	BaseURL     string  `validate:"omitempty,url"`
	Model       string  `validate:"required"`
	MaxTokens   int     `validate:"gt=0"`
	Temperature float32 `validate:"gte=0,lte=2"`
}

// RedisConfig with an empty Addr runs the gateway without the post cache and
// the toggle guard.
type RedisConfig struct {
	Addr      string
	PostTTL   time.Duration
	ToggleTTL time.Duration
}

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Google  GoogleConfig
	AI      AIConfig
	DB      DBConfig
	Redis   RedisConfig
}

var envBindings = map[string]string{
	"api.baseURL":         "API_URL",
	"session.secret":      "SESSION_SECRET",
	"session.store":       "SESSION_STORE",
	"google.clientID":     "GOOGLE_CLIENT_ID",
	"google.clientSecret": "GOOGLE_CLIENT_SECRET",
	"ai.apiKey":           "OPENAI_API_KEY",
	"postgres.user":       "POSTGRES_USER",
	"postgres.password":   "POSTGRES_PASSWORD",
	"postgres.host":       "POSTGRES_HOST",
	"postgres.port":       "POSTGRES_PORT",
	"postgres.database":   "POSTGRES_DATABASE",
	"postgres.sslmode":    "POSTGRES_SSLMODE",
	"redis.addr":          "REDIS_ADDR",
	"app.port":            "PORT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("client.origin", "http://localhost:3000")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("session.cookieName", "blog_session")
	v.SetDefault("session.maxAge", 24*time.Hour)
	v.SetDefault("session.secure", false)
	v.SetDefault("session.store", "postgres")
	v.SetDefault("session.sqlitePath", "sessions.db")
	v.SetDefault("session.cleanupInterval", time.Hour)
	v.SetDefault("google.redirectURL", "http://localhost:8080/api/auth/google/callback")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.maxTokens", 400)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("cache.postTTL", 5*time.Minute)
	v.SetDefault("cache.toggleTTL", 2*time.Second)
	v.SetDefault("postgres.sslmode", "disable")
}

// Load reads app.yaml from dir (a missing file is not an error) and the
// environment. Environment variables win over the file.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigType("yaml")
	v.SetConfigName("app")
	v.AllowEmptyEnv(true)

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port:         v.GetString("app.port"),
			ClientOrigin: v.GetString("client.origin"),
		},
		API: APIConfig{
			BaseURL: v.GetString("api.baseURL"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Secret:          v.GetString("session.secret"),
			CookieName:      v.GetString("session.cookieName"),
			MaxAge:          v.GetDuration("session.maxAge"),
			Secure:          v.GetBool("session.secure"),
			Store:           v.GetString("session.store"),
			SQLitePath:      v.GetString("session.sqlitePath"),
			CleanupInterval: v.GetDuration("session.cleanupInterval"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("google.clientID"),
			ClientSecret: v.GetString("google.clientSecret"),
			RedirectURL:  v.GetString("google.redirectURL"),
		},
		AI: AIConfig{
			APIKey:      v.GetString("ai.apiKey"),
			BaseURL:     v.GetString("ai.baseURL"),
			Model:       v.GetString("ai.model"),
			MaxTokens:   v.GetInt("ai.maxTokens"),
			Temperature: float32(v.GetFloat64("ai.temperature")),
		},
		DB: DBConfig{
			Username: v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			DBName:   v.GetString("postgres.database"),
			SSLMode:  v.GetString("postgres.sslmode"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("redis.addr"),
			PostTTL:   v.GetDuration("cache.postTTL"),
			ToggleTTL: v.GetDuration("cache.toggleTTL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Session.Store == "postgres" && c.DB.Host == "" {
		return errors.New("invalid config: POSTGRES_HOST is required for the postgres session store")
	}
	return nil
}
