package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	LogLevel    string
	Origination OriginationConfig
	Database    DatabaseConfig
	Session     SessionConfig
	JWT         JWTConfig
	Cookie      CookieConfig
}

// OriginationConfig describes the remote loan-origination backend
type OriginationConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	MaxIdle      int
	MaxOpen      int
	ConnLifetime time.Duration
	PingTimeout  time.Duration
}

// SessionConfig controls wizard sessions and the durable mirror
type SessionConfig struct {
	MirrorEnabled bool
	MirrorSecret  string
	MirrorTTL     time.Duration
	IdleTimeout   time.Duration
}

// JWTConfig holds the session cookie signing settings
type JWTConfig struct {
	Secret      string
	SessionMins int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Origination: loadOriginationConfig(),
		Database:    loadDatabaseConfig(appMode),
		Session:     loadSessionConfig(appMode),
		JWT:         loadJWTConfig(appMode),
		Cookie:      loadCookieConfig(appMode),
	}

	if config.Session.MirrorEnabled && config.Session.MirrorSecret == "" {
		return nil, fmt.Errorf("SESSION_MIRROR is on but %sMIRROR_SECRET is empty", modePrefix(appMode))
	}

	// Set global config
	AppConfig = config

	logrus.WithField("mode", appMode).Info("configuration loaded")
	return config, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

func loadOriginationConfig() OriginationConfig {
	timeoutSecs, _ := strconv.Atoi(getEnv("ORIGINATION_TIMEOUT_SECONDS", "0"))
	rps, _ := strconv.ParseFloat(getEnv("ORIGINATION_RPS", "0"), 64)
	burst, _ := strconv.Atoi(getEnv("ORIGINATION_BURST", "5"))

	return OriginationConfig{
		BaseURL: strings.TrimSpace(getEnv("ORIGINATION_BASE_URL", "")),
		Timeout: time.Duration(timeoutSecs) * time.Second,
		RPS:     rps,
		Burst:   burst,
	}
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	maxIdle, _ := strconv.Atoi(getEnv(prefix+"DB_MAX_IDLE", "2"))
	maxOpen, _ := strconv.Atoi(getEnv(prefix+"DB_MAX_OPEN", "8"))
	lifetimeMins, _ := strconv.Atoi(getEnv("DB_CONN_LIFETIME_MINUTES", "30"))
	pingSecs, _ := strconv.Atoi(getEnv("DB_PING_TIMEOUT_SECONDS", "3"))
	if maxOpen > 0 && maxIdle > maxOpen {
		maxIdle = maxOpen
	}

	return DatabaseConfig{
		Host:         getEnv(prefix+"DB_HOST", "localhost"),
		Port:         getEnv(prefix+"DB_PORT", "3306"),
		User:         getEnv(prefix+"DB_USER", "root"),
		Password:     getEnv(prefix+"DB_PASS", ""),
		DBName:       getEnv(prefix+"DB_NAME", "tarit_loan"),
		MaxIdle:      maxIdle,
		MaxOpen:      maxOpen,
		ConnLifetime: time.Duration(lifetimeMins) * time.Minute,
		PingTimeout:  time.Duration(pingSecs) * time.Second,
	}
}

func loadSessionConfig(mode string) SessionConfig {
	enabled, _ := strconv.ParseBool(getEnv("SESSION_MIRROR", "false"))
	ttlMins, _ := strconv.Atoi(getEnv("SESSION_MIRROR_MINUTES", "120"))
	idleMins, _ := strconv.Atoi(getEnv("SESSION_IDLE_MINUTES", "30"))

	return SessionConfig{
		MirrorEnabled: enabled,
		MirrorSecret:  getEnv(modePrefix(mode)+"MIRROR_SECRET", ""),
		MirrorTTL:     time.Duration(ttlMins) * time.Minute,
		IdleTimeout:   time.Duration(idleMins) * time.Minute,
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	sessionMins, _ := strconv.Atoi(getEnv("SESSION_TOKEN_MINUTES", "120"))

	return JWTConfig{
		Secret:      getEnv(modePrefix(mode)+"JWT_SECRET", "default_secret"),
		SessionMins: sessionMins,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://taritloan.example.com"
	}
	return origins
}

// ConfigureLogging applies LOG_LEVEL and picks the formatter for the mode
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
