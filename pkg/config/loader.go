package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var configPaths = []string{"./configs", ".", "/app/configs"}

func Load() (*Config, error) {
	return load(viper.New(), configPaths...)
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow the provider-style env vars without the APP_ prefix
	bindEnv(v, "http.port", "HTTP_PORT", "APP_HTTP_PORT", "PORT")
	bindEnv(v, "database.url", "DATABASE_URL", "APP_DATABASE_URL")
	bindEnv(v, "redis.url", "REDIS_URL", "APP_REDIS_URL")
	bindEnv(v, "queue.url", "QUEUE_URL", "NATS_URL", "APP_QUEUE_URL")
	bindEnv(v, "queue.driver", "QUEUE_DRIVER", "APP_QUEUE_DRIVER")
	bindEnv(v, "jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	bindEnv(v, "owner.email", "OWNER_EMAIL", "APP_OWNER_EMAIL")
	bindEnv(v, "owner.password", "OWNER_PASSWORD", "APP_OWNER_PASSWORD")
	bindEnv(v, "gemini.api_key", "GOOGLE_API_KEY", "GEMINI_API_KEY", "APP_GEMINI_API_KEY")
	bindEnv(v, "anthropic.api_key", "ANTHROPIC_API_KEY", "APP_ANTHROPIC_API_KEY")
	bindEnv(v, "openai.api_key", "OPENAI_API_KEY", "APP_OPENAI_API_KEY")
	bindEnv(v, "elevenlabs.api_key", "ELEVENLABS_API_KEY", "APP_ELEVENLABS_API_KEY")
	bindEnv(v, "elevenlabs.voice_id", "ELEVENLABS_VOICE_ID")
	bindEnv(v, "telegram.bot_token", "TELEGRAM_BOT_TOKEN", "APP_TELEGRAM_BOT_TOKEN")
	bindEnv(v, "telegram.webhook_secret", "TELEGRAM_WEBHOOK_SECRET")
	bindEnv(v, "email.api_key", "SENDGRID_API_KEY")
	bindEnv(v, "email.from", "EMAIL_ADDRESS")
	bindEnv(v, "email.smtp_host", "SMTP_SERVER")
	bindEnv(v, "email.smtp_port", "SMTP_PORT")
	bindEnv(v, "email.smtp_username", "EMAIL_ADDRESS")
	bindEnv(v, "email.smtp_password", "EMAIL_PASSWORD")
	bindEnv(v, "vault.address", "VAULT_ADDR")
	bindEnv(v, "vault.token", "VAULT_TOKEN")
	bindEnv(v, "app.environment", "APP_ENVIRONMENT")
	bindEnv(v, "logging.level", "LOG_LEVEL")

	Defaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindEnv(v *viper.Viper, key string, envs ...string) {
	_ = v.BindEnv(append([]string{key}, envs...)...)
}

// Defaults registers the values used when neither the file nor the
// environment sets a key.
func Defaults(v *viper.Viper) {
	v.SetDefault("app.name", "jarvis")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.idle_timeout", 120*time.Second)
	v.SetDefault("http.body_limit", 25*1024*1024)

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.port", 50051)

	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetDefault("queue.driver", "nats")
	v.SetDefault("queue.group", "jarvis")

	v.SetDefault("jwt.access_token_duration", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_duration", 7*24*time.Hour)
	v.SetDefault("owner.name", "Owner")

	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.transcription_model", "whisper-1")
	v.SetDefault("elevenlabs.voice_id", "21m00Tcm4TlvDq8ikWAM")
	v.SetDefault("elevenlabs.model", "eleven_monolingual_v1")
	v.SetDefault("telegram.speak", true)

	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_use_tls", true)
	v.SetDefault("email.from_name", "Jarvis")

	v.SetDefault("opentelemetry.service_name", "jarvis")
	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.consecutive_failures", 5)
	v.SetDefault("circuit_breaker.http_timeout", 60*time.Second)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("region.timezone", "UTC")
}

// Validate reports every required key that is still empty.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("database.url", c.Database.URL)
	require("jwt.secret", c.JWT.Secret)
	require("gemini.api_key", c.Gemini.APIKey)
	require("openai.api_key", c.OpenAI.APIKey)

	switch c.Queue.Driver {
	case "", "nats", "rabbitmq":
	default:
		return fmt.Errorf("config: unsupported queue driver %q", c.Queue.Driver)
	}
	switch c.Email.Provider {
	case "smtp", "sendgrid":
	default:
		return fmt.Errorf("config: unsupported email provider %q", c.Email.Provider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SecretSource resolves provider API keys from a secret store.
type SecretSource interface {
	GetAPIKey(ctx context.Context, name string) (string, error)
}

// ApplySecrets fills empty API keys from src. Keys already set by the file or
// the environment win.
func (c *Config) ApplySecrets(ctx context.Context, src SecretSource) error {
	targets := map[string]*string{
		"database":   &c.Database.URL,
		"gemini":     &c.Gemini.APIKey,
		"anthropic":  &c.Anthropic.APIKey,
		"openai":     &c.OpenAI.APIKey,
		"elevenlabs": &c.ElevenLabs.APIKey,
		"telegram":   &c.Telegram.BotToken,
		"sendgrid":   &c.Email.APIKey,
		"jwt":        &c.JWT.Secret,
	}
	for name, field := range targets {
		if *field != "" {
			continue
		}
		value, err := src.GetAPIKey(ctx, name)
		if err != nil {
			return fmt.Errorf("config: secret %s: %w", name, err)
		}
		*field = value
	}
	return nil
}
