package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte

	SessionBackend      string
	SessionTTL          time.Duration
	SessionCookieSecure bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string

	NotifyBackend string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	MailFrom      string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	ImageBackend string
	UploadDir    string
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3PublicURL  string

	CORSOrigins []string
	CSRFEnabled bool

	AdminUsername string
	AdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "quiz"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		SessionBackend:      strings.ToLower(EnvDefault("SESSION_BACKEND", "redis")),
		SessionTTL:          EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		SessionCookieSecure: EnvBoolDefault("SESSION_COOKIE_SECURE", true),

		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		NotifyBackend: strings.ToLower(EnvDefault("NOTIFY_BACKEND", "smtp")),
		SMTPHost:      EnvDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      EnvIntDefault("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		MailFrom:      EnvDefault("MAIL_FROM", os.Getenv("SMTP_USER")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "questions"),

		ImageBackend: strings.ToLower(EnvDefault("IMAGE_BACKEND", "local")),
		UploadDir:    EnvDefault("UPLOAD_DIR", "uploads"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3Region:     EnvDefault("S3_REGION", "us-east-1"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3PublicURL:  os.Getenv("S3_PUBLIC_URL"),

		CORSOrigins: CSV(os.Getenv("CORS_ORIGINS")),
		CSRFEnabled: EnvBoolDefault("CSRF_ENABLED", false),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
