package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	DB      DBConfig
	Redis   RedisConfig
	LLM     LLMConfig
	Scraper ScraperConfig
	Quiz    QuizConfig
	Auth    AuthConfig
	Otel    OtelConfig
	Metrics MetricsConfig
	Version string
}

type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	BodyLimit      int
	AllowedOrigins string
}

type LoggerConfig struct {
	Env   string
	Level string
}

type DBConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	RecordTTL time.Duration
}

type LLMConfig struct {
	Provider     string
	Model        string
	APIKey       string
	ServerURL    string
	Temperature  float64
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

type ScraperConfig struct {
	Timeout         time.Duration
	UserAgent       string
	MaxContentChars int
}

// QuizConfig holds the process-wide output policy.
type QuizConfig struct {
	QuestionCountPolicy string
}

type AuthConfig struct {
	AdminSecret string
	Issuer      string
	TokenTTL    time.Duration
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type MetricsConfig struct {
	Enabled bool
}

const (
	QuestionCountStrict = "strict"
	QuestionCountWarn   = "warn"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "1.0.0")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.body_limit", 1024*1024)
	v.SetDefault("server.allowed_origins", "http://localhost:5173")

	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")

	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "file:quiz_generator.db?_foreign_keys=on")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.record_ttl", 24*time.Hour)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-flash-latest")
	v.SetDefault("llm.server_url", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.max_attempts", 2)
	v.SetDefault("llm.retry_backoff", 2*time.Second)

	v.SetDefault("scraper.timeout", 2*time.Minute)
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("scraper.max_content_chars", 20000)

	v.SetDefault("quiz.question_count_policy", QuestionCountStrict)

	v.SetDefault("auth.issuer", "wiki-quiz")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.sample_ratio", 0.1)

	v.SetDefault("metrics.enabled", true)
}

// LoadConfig reads config.yaml (optional) and APP_* environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Version: v.GetString("version"),
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			BodyLimit:      v.GetInt("server.body_limit"),
			AllowedOrigins: v.GetString("server.allowed_origins"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		DB: DBConfig{
			Driver:       v.GetString("db.driver"),
			DSN:          v.GetString("db.dsn"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			MaxIdleConns: v.GetInt("db.max_idle_conns"),
		},
		Redis: RedisConfig{
			Address:   v.GetString("redis.address"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			RecordTTL: v.GetDuration("redis.record_ttl"),
		},
		LLM: LLMConfig{
			Provider:     v.GetString("llm.provider"),
			Model:        v.GetString("llm.model"),
			APIKey:       v.GetString("llm.api_key"),
			ServerURL:    v.GetString("llm.server_url"),
			Temperature:  v.GetFloat64("llm.temperature"),
			Timeout:      v.GetDuration("llm.timeout"),
			MaxAttempts:  v.GetInt("llm.max_attempts"),
			RetryBackoff: v.GetDuration("llm.retry_backoff"),
		},
		Scraper: ScraperConfig{
			Timeout:         v.GetDuration("scraper.timeout"),
			UserAgent:       v.GetString("scraper.user_agent"),
			MaxContentChars: v.GetInt("scraper.max_content_chars"),
		},
		Quiz: QuizConfig{
			QuestionCountPolicy: v.GetString("quiz.question_count_policy"),
		},
		Auth: AuthConfig{
			AdminSecret: v.GetString("auth.admin_secret"),
			Issuer:      v.GetString("auth.issuer"),
			TokenTTL:    v.GetDuration("auth.token_ttl"),
		},
		Otel: OtelConfig{
			Enabled:     v.GetBool("otel.enabled"),
			Endpoint:    v.GetString("otel.endpoint"),
			Insecure:    v.GetBool("otel.insecure"),
			SampleRatio: v.GetFloat64("otel.sample_ratio"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}

	applyLegacyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLegacyEnv honours the variable names used by the earlier deployment.
func applyLegacyEnv(cfg *Config) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DB.DSN, cfg.DB.Driver = DSNFromDatabaseURL(dsn)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		cfg.Redis.Address = addr
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = origins
	}
	if port := os.Getenv("PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

// DSNFromDatabaseURL maps a SQLAlchemy style DATABASE_URL onto a driver and DSN.
func DSNFromDatabaseURL(raw string) (dsn string, driver string) {
	switch {
	case strings.HasPrefix(raw, "sqlite:///"):
		return "file:" + strings.TrimPrefix(raw, "sqlite:///"), "sqlite3"
	case strings.HasPrefix(raw, "postgresql://"), strings.HasPrefix(raw, "postgres://"):
		return raw, "postgres"
	case strings.HasPrefix(raw, "oracle://"):
		return raw, "oracle"
	default:
		return raw, "postgres"
	}
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite3", "oracle":
	default:
		return fmt.Errorf("unsupported db driver: %q", c.DB.Driver)
	}
	switch c.LLM.Provider {
	case "gemini", "ollama", "openai":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	switch c.Quiz.QuestionCountPolicy {
	case QuestionCountStrict, QuestionCountWarn:
	default:
		return fmt.Errorf("unsupported question count policy: %q", c.Quiz.QuestionCountPolicy)
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1, got %d", c.LLM.MaxAttempts)
	}
	return nil
}
