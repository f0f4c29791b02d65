package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Uploads   UploadsConfig
	Dashboard DashboardConfig
	CORS      CORSConfig
	Log       LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig governs the optional staff login surface.
type AuthConfig struct {
	Enabled    bool
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// UploadsConfig locates the student photo store.
type UploadsConfig struct {
	Dir             string
	PublicPath      string
	PlaceholderURL  string
	PlaceholderFile string
}

// DashboardConfig tunes the optional schedule cache.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled:    v.GetBool("AUTH_ENABLED"),
		Secret:     v.GetString("AUTH_JWT_SECRET"),
		Expiration: parseDuration(v.GetString("AUTH_JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("AUTH_JWT_ISSUER"),
	}

	cfg.Uploads = UploadsConfig{
		Dir:             v.GetString("UPLOADS_DIR"),
		PublicPath:      v.GetString("UPLOADS_PUBLIC_PATH"),
		PlaceholderURL:  v.GetString("UPLOADS_PLACEHOLDER_URL"),
		PlaceholderFile: v.GetString("UPLOADS_PLACEHOLDER_FILE"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academy")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_JWT_SECRET", "dev_secret")
	v.SetDefault("AUTH_JWT_EXPIRATION", "24h")
	v.SetDefault("AUTH_JWT_ISSUER", "academy-api")

	v.SetDefault("UPLOADS_DIR", "./uploads/students")
	v.SetDefault("UPLOADS_PUBLIC_PATH", "/uploads/students")
	v.SetDefault("UPLOADS_PLACEHOLDER_URL", "/default-avatar.png")
	v.SetDefault("UPLOADS_PLACEHOLDER_FILE", "./assets/default-avatar.png")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
