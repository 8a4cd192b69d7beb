package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port           int    `mapstructure:"port"`
		BodyLimitMB    int    `mapstructure:"body_limit_mb"`
		AllowedOrigins string `mapstructure:"allowed_origins"`
		// RequestTimeoutSeconds bounds every protected request, including pool waits.
		RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	} `mapstructure:"server"`

	RateLimit struct {
		Max           int `mapstructure:"max"`
		WindowSeconds int `mapstructure:"window_seconds"`
	} `mapstructure:"rate_limit"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		TimeZone string `mapstructure:"timezone"`
		// MaxOpenConns caps the request pool; each protected request holds one connection.
		MaxOpenConns int `mapstructure:"max_open_conns"`
		// SequencerConns caps the separate pool used for invoice numbers.
		SequencerConns int `mapstructure:"sequencer_conns"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
	} `mapstructure:"jwt"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// DSN builds the postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Database.Host, c.Database.User, c.Database.Password, c.Database.Name,
		c.Database.Port, c.Database.SSLMode, c.Database.TimeZone)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpirationHours) * time.Hour
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// LogLevel maps the configured level name onto slog.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configs/config.yaml (optional), .env (optional) and environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(envOr("CONFIG_FILE", "configs/config.yaml"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit_mb", 4)
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("rate_limit.max", 60)
	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "shop_management")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.sequencer_conns", 4)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.topic", "voicers.created")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		slog.Debug("config file not loaded, using defaults", "err", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	applyEnvOverrides(&cfg)

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("JWT secret not configured (set JWT_SECRET)")
	}
	return &cfg, nil
}

// applyEnvOverrides keeps the flat env names used by the docker setup working.
func applyEnvOverrides(cfg *Config) {
	if port := envInt("PORT", 0); port > 0 {
		cfg.Server.Port = port
	}
	if mb := envInt("BODY_LIMIT_MB", 0); mb > 0 {
		cfg.Server.BodyLimitMB = mb
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = origins
	}
	if n := envInt("REQUEST_TIMEOUT_SECONDS", 0); n > 0 {
		cfg.Server.RequestTimeoutSeconds = n
	}
	if n := envInt("RATE_LIMIT_MAX", 0); n > 0 {
		cfg.RateLimit.Max = n
	}
	if n := envInt("RATE_LIMIT_WINDOW_SECONDS", 0); n > 0 {
		cfg.RateLimit.WindowSeconds = n
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := envInt("DB_PORT", 0); port > 0 {
		cfg.Database.Port = port
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	} else if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
