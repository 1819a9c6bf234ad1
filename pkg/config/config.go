package config

import (
	"errors"
	"io/fs"
	"strconv"
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
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Planning      PlanningConfig
	TextGen       TextGenConfig
	Notifications NotificationConfig
	Scheduler     SchedulerConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Enabled    bool
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlanningConfig tunes the study planning run.
type PlanningConfig struct {
	Horizon           time.Duration
	ReminderLookahead time.Duration
	CacheTTL          time.Duration
	DefaultHours      []int
}

// TextGenConfig configures the optional text-generation backend. An empty APIKey disables it.
type TextGenConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	RetryDelay time.Duration
}

// Enabled reports whether a backend is configured.
func (c TextGenConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// NotificationConfig selects the reminder delivery channel.
type NotificationConfig struct {
	Enabled        bool
	Channel        string
	SendGridAPIKey string
	FromEmail      string
	AppName        string
}

// SchedulerConfig drives the cron-style triggers of the worker process.
type SchedulerConfig struct {
	DeadlineSpec string
	PlanningSpec string
	Workers      int
	Retries      int
	RetryDelay   time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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
		Enabled:  v.GetBool("ENABLE_CACHE"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Enabled:    v.GetBool("ENABLE_AUTH"),
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planning = PlanningConfig{
		Horizon:           parseDuration(v.GetString("PLANNING_HORIZON"), 30*24*time.Hour),
		ReminderLookahead: parseDuration(v.GetString("REMINDER_LOOKAHEAD"), 24*time.Hour),
		CacheTTL:          parseDuration(v.GetString("PLANNING_CACHE_TTL"), 6*time.Hour),
		DefaultHours:      parseHours(v.GetString("PLANNING_PREFERRED_HOURS")),
	}

	cfg.TextGen = TextGenConfig{
		APIKey:     v.GetString("HUGGINGFACE_API_KEY"),
		Model:      v.GetString("HUGGINGFACE_MODEL"),
		BaseURL:    v.GetString("HUGGINGFACE_BASE_URL"),
		Timeout:    parseDuration(v.GetString("TEXTGEN_TIMEOUT"), 60*time.Second),
		RetryDelay: parseDuration(v.GetString("TEXTGEN_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Notifications = NotificationConfig{
		Enabled:        v.GetBool("ENABLE_NOTIFICATIONS"),
		Channel:        strings.ToLower(v.GetString("NOTIFICATION_CHANNEL")),
		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromEmail:      v.GetString("NOTIFICATION_FROM_EMAIL"),
		AppName:        v.GetString("NOTIFICATION_APP_NAME"),
	}

	cfg.Scheduler = SchedulerConfig{
		DeadlineSpec: v.GetString("SCHEDULER_DEADLINE_CRON"),
		PlanningSpec: v.GetString("SCHEDULER_PLANNING_CRON"),
		Workers:      v.GetInt("SCHEDULER_WORKERS"),
		Retries:      v.GetInt("SCHEDULER_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("SCHEDULER_RETRY_DELAY"), 30*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "studyplanner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_CACHE", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_AUTH", false)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNING_HORIZON", "720h")
	v.SetDefault("REMINDER_LOOKAHEAD", "24h")
	v.SetDefault("PLANNING_CACHE_TTL", "6h")
	v.SetDefault("PLANNING_PREFERRED_HOURS", "9,10,14,15,16,17")

	v.SetDefault("HUGGINGFACE_API_KEY", "")
	v.SetDefault("HUGGINGFACE_MODEL", "meta-llama/Llama-3.1-8B-Instruct")
	v.SetDefault("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co")
	v.SetDefault("TEXTGEN_TIMEOUT", "60s")
	v.SetDefault("TEXTGEN_RETRY_DELAY", "5s")

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATION_CHANNEL", "console")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("NOTIFICATION_FROM_EMAIL", "no-reply@studyplanner.local")
	v.SetDefault("NOTIFICATION_APP_NAME", "Study Planner")

	v.SetDefault("SCHEDULER_DEADLINE_CRON", "0 * * * *")
	v.SetDefault("SCHEDULER_PLANNING_CRON", "0 8 * * *")
	v.SetDefault("SCHEDULER_WORKERS", 4)
	v.SetDefault("SCHEDULER_RETRIES", 1)
	v.SetDefault("SCHEDULER_RETRY_DELAY", "30s")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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

// parseHours reads a comma separated list of hours of day, dropping anything outside 0-23.
func parseHours(raw string) []int {
	parts := splitAndTrim(raw)
	hours := make([]int, 0, len(parts))
	for _, part := range parts {
		h, err := strconv.Atoi(part)
		if err != nil || h < 0 || h > 23 {
			continue
		}
		hours = append(hours, h)
	}
	return hours
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
