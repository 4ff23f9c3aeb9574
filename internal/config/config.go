package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

var (
	ErrProductionSecret = errors.New("JWT_SECRET must be set in production environment")
	ErrJWTAlgorithm     = errors.New("JWT_ALGORITHM must be one of HS256, HS384, HS512")
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseDSN string

	JWTSecret       string
	JWTAlgorithm    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	EmailTokenTTL   time.Duration

	// AppBaseURL overrides the host of confirmation links. When empty the
	// link is built from the incoming request.
	AppBaseURL string

	RateLimitTimes  int
	RateLimitWindow time.Duration
	RedisAddr       string
	RedisPassword   string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailFromName string
	MailWorkers  int
	MailQueue    int

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// Warnings lists values that were malformed and replaced by defaults.
	Warnings []string
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8000"),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabaseDSN:  getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/addressbook?parseTime=true"),
		JWTSecret:    getEnv("JWT_SECRET", devJWTSecret),
		JWTAlgorithm: strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
		AppBaseURL:   os.Getenv("APP_BASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@localhost"),
		MailFromName: getEnv("MAIL_FROM_NAME", "Contacts App"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "avatars"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	cfg.AccessTokenTTL = cfg.duration("ACCESS_TOKEN_TTL", 15*time.Minute)
	cfg.RefreshTokenTTL = cfg.duration("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	cfg.EmailTokenTTL = cfg.duration("EMAIL_TOKEN_TTL", 7*24*time.Hour)

	cfg.RateLimitTimes = cfg.positiveInt("RATE_LIMIT_TIMES", 10)
	cfg.RateLimitWindow = time.Duration(cfg.positiveInt("RATE_LIMIT_SECONDS", 60)) * time.Second
	cfg.SMTPPort = cfg.positiveInt("SMTP_PORT", 587)
	cfg.MailWorkers = cfg.positiveInt("MAIL_WORKERS", 2)
	cfg.MailQueue = cfg.positiveInt("MAIL_QUEUE_SIZE", 100)

	switch cfg.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return Config{}, fmt.Errorf("%w: got %q", ErrJWTAlgorithm, cfg.JWTAlgorithm)
	}

	if cfg.IsProduction() && cfg.JWTSecret == devJWTSecret {
		return Config{}, ErrProductionSecret
	}

	return cfg, nil
}

func (c *Config) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive duration, using %s", key, v, fallback))
		return fallback
	}
	return d
}

func (c *Config) positiveInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive integer, using %d", key, v, fallback))
		return fallback
	}
	return n
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
