package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Admin      AdminConfig
	Storage    StorageConfig
	Attendance AttendanceConfig
	Telegram   TelegramConfig
}

type DatabaseConfig struct {
	URI     string
	Name    string
	Timeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// AdminConfig describes the boss account seeded at startup.
type AdminConfig struct {
	EmpID    string
	Password string
	Name     string
	Email    string
}

type StorageConfig struct {
	BasePath string
	BaseURL  string

	PhotoRetention     time.Duration
	PhotoCleanupHour   int
	PhotoCleanupMinute int
}

type AttendanceConfig struct {
	LateAfterHour   int
	LateAfterMinute int
}

// TelegramConfig is optional; both values must be set to enable the sink.
type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.AdminChatID != 0
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	dbTimeout, err := time.ParseDuration(getEnv("MONGO_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		URI:     getEnv("MONGO_URI", ""),
		Name:    getEnv("MONGO_DB", "attendance"),
		Timeout: dbTimeout,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("PORT", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	config.Admin = AdminConfig{
		EmpID:    getEnv("ADMIN_EMP_ID", "BOSS"),
		Password: getEnv("ADMIN_PASSWORD", "ChangeMe123!"),
		Name:     getEnv("ADMIN_NAME", "Company Boss"),
		Email:    getEnv("ADMIN_EMAIL", "boss@example.com"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	// Storage and photo retention
	retentionDays, err := strconv.Atoi(getEnv("PHOTO_RETENTION_DAYS", "30"))
	if err != nil || retentionDays <= 0 {
		return nil, fmt.Errorf("invalid PHOTO_RETENTION_DAYS: %q", getEnv("PHOTO_RETENTION_DAYS", "30"))
	}
	cleanupHour, cleanupMinute, ok := validator.ParseClock(getEnv("PHOTO_CLEANUP_AT", "02:00"))
	if !ok {
		return nil, fmt.Errorf("invalid PHOTO_CLEANUP_AT: expected HH:MM")
	}

	config.Storage = StorageConfig{
		BasePath:           getEnv("UPLOADS_DIR", "uploads"),
		BaseURL:            strings.TrimRight(getEnv("UPLOADS_BASE_URL", fmt.Sprintf("http://localhost:%d/uploads", appPort)), "/"),
		PhotoRetention:     time.Duration(retentionDays) * 24 * time.Hour,
		PhotoCleanupHour:   cleanupHour,
		PhotoCleanupMinute: cleanupMinute,
	}

	lateHour, lateMinute, ok := validator.ParseClock(getEnv("ATTENDANCE_LATE_AFTER", "09:30"))
	if !ok {
		return nil, fmt.Errorf("invalid ATTENDANCE_LATE_AFTER: expected HH:MM")
	}
	config.Attendance = AttendanceConfig{
		LateAfterHour:   lateHour,
		LateAfterMinute: lateMinute,
	}

	var chatID int64
	if raw := getEnv("TELEGRAM_ADMIN_CHAT_ID", ""); raw != "" {
		chatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
	}
	config.Telegram = TelegramConfig{
		BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		AdminChatID: chatID,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Admin.EmpID == "" {
		return fmt.Errorf("ADMIN_EMP_ID must not be empty")
	}
	if len(c.Admin.Password) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
