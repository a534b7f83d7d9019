package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig holds the status-derivation thresholds. Different
// organizations run different shift policies, so these come from the
// environment.
type AttendanceConfig struct {
	GraceMinutes       int // minutes after scheduled start before a check-in counts as late
	StandardShiftHours int // hours beyond which worked time counts as overtime
	HalfDayHours       int // worked hours below this downgrade the day to half_day
	VoidMinutes        int // worked minutes below this void the day to absent
	OfficeRadiusMeters int // max distance from the registered office to count as onsite
}

// GracePeriod returns the late-arrival grace window as a duration.
func (a AttendanceConfig) GracePeriod() time.Duration {
	return time.Duration(a.GraceMinutes) * time.Minute
}

// StandardShiftMinutes returns the standard shift length in minutes.
func (a AttendanceConfig) StandardShiftMinutes() int {
	return a.StandardShiftHours * 60
}

// HalfDayMinutes returns the half-day cutoff in minutes.
func (a AttendanceConfig) HalfDayMinutes() int {
	return a.HalfDayHours * 60
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "worklane"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance thresholds
	graceMinutes, err := getEnvInt("ATTENDANCE_GRACE_MINUTES", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_GRACE_MINUTES: %w", err)
	}
	shiftHours, err := getEnvInt("ATTENDANCE_STANDARD_SHIFT_HOURS", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_STANDARD_SHIFT_HOURS: %w", err)
	}
	halfDayHours, err := getEnvInt("ATTENDANCE_HALF_DAY_HOURS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_HALF_DAY_HOURS: %w", err)
	}
	voidMinutes, err := getEnvInt("ATTENDANCE_VOID_MINUTES", 15)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_VOID_MINUTES: %w", err)
	}
	officeRadius, err := getEnvInt("OFFICE_RADIUS_METERS", 250)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_RADIUS_METERS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		GraceMinutes:       graceMinutes,
		StandardShiftHours: shiftHours,
		HalfDayHours:       halfDayHours,
		VoidMinutes:        voidMinutes,
		OfficeRadiusMeters: officeRadius,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.GraceMinutes < 0 {
		return fmt.Errorf("ATTENDANCE_GRACE_MINUTES must not be negative")
	}
	if c.Attendance.StandardShiftHours <= 0 {
		return fmt.Errorf("ATTENDANCE_STANDARD_SHIFT_HOURS must be positive")
	}
	if c.Attendance.HalfDayHours <= 0 || c.Attendance.HalfDayHours > c.Attendance.StandardShiftHours {
		return fmt.Errorf("ATTENDANCE_HALF_DAY_HOURS must be positive and not exceed the standard shift length")
	}
	if c.Attendance.VoidMinutes < 0 || c.Attendance.VoidMinutes >= c.Attendance.HalfDayHours*60 {
		return fmt.Errorf("ATTENDANCE_VOID_MINUTES must be below the half-day cutoff")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
