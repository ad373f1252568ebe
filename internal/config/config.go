// Package config загружает настройки из переменных окружения и Docker secrets.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parenting-server/internal/logger"
	"parenting-server/pkg/ai"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// ErrMissingAPIKey - провайдеру нужен ключ, но он не задан ни в окружении, ни в секрете.
var ErrMissingAPIKey = errors.New("AI API key is not configured: set AI_API_KEY (or OPENAI_API_KEY) or provide the ai_api_key secret")

// ErrMissingTokenSecret - сервер не может выдавать токены сессий без секрета.
var ErrMissingTokenSecret = errors.New("session token secret is not configured: set SESSION_TOKEN_SECRET or provide the session_token_secret secret")

// Config содержит конфигурацию сервера и консольного клиента.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	SecretsDir  string `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	// Модель
	AIProvider       string        `envconfig:"AI_PROVIDER" default:"openai"`
	AIBaseURL        string        `envconfig:"AI_BASE_URL"`
	AIModel          string        `envconfig:"AI_MODEL"`
	AITimeout        time.Duration `envconfig:"AI_TIMEOUT" default:"30s"`
	AIMaxAttempts    int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIBaseRetryDelay time.Duration `envconfig:"AI_BASE_RETRY_DELAY" default:"1s"`
	AITemperature    float64       `envconfig:"AI_TEMPERATURE" default:"0.3"`
	AIMaxTokens      int           `envconfig:"AI_MAX_TOKENS" default:"500"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string `ignored:"true"`

	// Хранилища
	SessionStore string        `envconfig:"SESSION_STORE" default:"memory"`
	RedisURL     string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	DatabaseURL  string        `envconfig:"DATABASE_URL"`
	SQLitePath   string        `envconfig:"SQLITE_PATH" default:"parentsim.db"`

	// RabbitMQ (необязательно)
	RabbitMQURL   string `envconfig:"RABBITMQ_URL"`
	OutcomesQueue string `envconfig:"OUTCOMES_QUEUE" default:"parenting_outcomes"`

	// Токены сессий
	SessionTokenTTL time.Duration `envconfig:"SESSION_TOKEN_TTL" default:"24h"`
	// Секретное поле БЕЗ envconfig тега
	SessionTokenSecret string `ignored:"true"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MaxResponseLength  int      `envconfig:"MAX_RESPONSE_LENGTH" default:"2000"`
}

// Load читает .env (если есть), переменные окружения и секреты.
// Отсутствие ключа модели для провайдера, которому он нужен, - ErrMissingAPIKey.
func Load() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))

	switch cfg.AIProvider {
	case ai.ProviderOpenAI, ai.ProviderOllama, ai.ProviderGemini:
	default:
		return nil, fmt.Errorf("%w: AI_PROVIDER=%q", ai.ErrUnknownProvider, cfg.AIProvider)
	}
	switch cfg.SessionStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q: expected memory or redis", cfg.SessionStore)
	}

	cfg.AIAPIKey = lookupSecret(cfg.SecretsDir, "ai_api_key", "AI_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")
	if ai.RequiresAPIKey(cfg.AIProvider) && cfg.AIAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.SessionTokenSecret = lookupSecret(cfg.SecretsDir, "session_token_secret", "SESSION_TOKEN_SECRET")

	return &cfg, nil
}

// RequireTokenSecret проверяет настройки, нужные только HTTP-серверу.
func (c *Config) RequireTokenSecret() error {
	if c.SessionTokenSecret == "" {
		return ErrMissingTokenSecret
	}
	return nil
}

// AI возвращает настройки клиента модели.
func (c *Config) AI() ai.Config {
	return ai.Config{
		Provider:       c.AIProvider,
		APIKey:         c.AIAPIKey,
		BaseURL:        c.AIBaseURL,
		Model:          c.AIModel,
		Timeout:        c.AITimeout,
		MaxAttempts:    c.AIMaxAttempts,
		BaseRetryDelay: c.AIBaseRetryDelay,
		Temperature:    c.AITemperature,
		MaxTokens:      c.AIMaxTokens,
	}
}

// Logger возвращает настройки логгера.
func (c *Config) Logger() logger.Config {
	return logger.Config{Level: c.LogLevel, Encoding: c.LogEncoding}
}

// IsProduction сообщает, запущен ли сервис в боевом окружении.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LogSummary пишет загруженную конфигурацию, скрывая секреты.
func (c *Config) LogSummary(log *zap.Logger) {
	log.Info("Конфигурация загружена",
		zap.String("env", c.Env),
		zap.String("port", c.Port),
		zap.String("logLevel", c.LogLevel),
		zap.String("aiProvider", c.AIProvider),
		zap.String("aiModel", c.AIModel),
		zap.String("aiBaseURL", c.AIBaseURL),
		zap.Duration("aiTimeout", c.AITimeout),
		zap.Int("aiMaxAttempts", c.AIMaxAttempts),
		zap.String("aiAPIKey", Mask(c.AIAPIKey)),
		zap.String("sessionStore", c.SessionStore),
		zap.String("redisURL", maskURL(c.RedisURL)),
		zap.String("databaseURL", maskURL(c.DatabaseURL)),
		zap.String("rabbitMQURL", maskURL(c.RabbitMQURL)),
		zap.String("sessionTokenSecret", Mask(c.SessionTokenSecret)),
		zap.Strings("corsAllowedOrigins", c.CORSAllowedOrigins),
	)
}
