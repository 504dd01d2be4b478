package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourcePostgres  = "postgres"
	SourceSQLite    = "sqlite"
	SourceSynthetic = "synthetic"

	ProviderGemini   = "gemini"
	ProviderGigaChat = "gigachat"
	ProviderMock     = "mock"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Source    SourceConfig
	LLM       LLMConfig
	Gemini    GeminiConfig
	GigaChat  GigaChatConfig
	Charts    ChartsConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	// URL, when set, wins over the individual connection fields.
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string for pgx.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type SourceConfig struct {
	Kind            string
	Limit           int
	SQLitePath      string
	SyntheticRows   int
	SyntheticSeed   int64
	RefreshInterval time.Duration
}

type LLMConfig struct {
	Provider string
	Timeout  time.Duration
	MaxSteps int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type ChartsConfig struct {
	Enabled bool
	Dir     string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work too (Docker/K8s).
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "60"))
	sourceLimit, _ := strconv.Atoi(getEnv("SOURCE_LIMIT", "1000"))
	syntheticRows, _ := strconv.Atoi(getEnv("SYNTHETIC_ROWS", "100"))
	syntheticSeed, _ := strconv.ParseInt(getEnv("SYNTHETIC_SEED", "0"), 10, 64)
	maxSteps, _ := strconv.Atoi(getEnv("LLM_MAX_STEPS", "3"))
	rps, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	burst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))

	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	llmTimeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "5001"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "argos"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Source: SourceConfig{
			Kind:            strings.ToLower(getEnv("DATA_SOURCE", SourceSynthetic)),
			Limit:           sourceLimit,
			SQLitePath:      getEnv("SQLITE_PATH", "data/argos.db"),
			SyntheticRows:   syntheticRows,
			SyntheticSeed:   syntheticSeed,
			RefreshInterval: refreshInterval,
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderMock)),
			Timeout:  llmTimeout,
			MaxSteps: maxSteps,
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
		},
		Charts: ChartsConfig{
			Enabled: getEnv("CHARTS_ENABLED", "true") == "true",
			Dir:     getEnv("CHARTS_DIR", "static/charts"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Source.Kind {
	case SourcePostgres, SourceSQLite, SourceSynthetic:
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.Source.Kind)
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderGigaChat, ProviderMock:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.Source.Limit <= 0 {
		return fmt.Errorf("SOURCE_LIMIT must be positive, got %d", c.Source.Limit)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
