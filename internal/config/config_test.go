package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "trims and skips blanks", in: " a:1 , ,b:2,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("QUIZ_TEST_INT", "not-a-number")
	t.Setenv("QUIZ_TEST_BOOL", "true")
	t.Setenv("QUIZ_TEST_DUR", "90m")

	assert.Equal(t, 7, EnvIntDefault("QUIZ_TEST_INT", 7))
	assert.True(t, EnvBoolDefault("QUIZ_TEST_BOOL", false))
	assert.Equal(t, 90*time.Minute, EnvDurationDefault("QUIZ_TEST_DUR", time.Hour))
	assert.Equal(t, time.Hour, EnvDurationDefault("QUIZ_TEST_MISSING", time.Hour))
	assert.Equal(t, "fallback", EnvDefault("QUIZ_TEST_MISSING", "fallback"))
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("SESSION_TTL", "")

	cfg := Load()

	require.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "root", cfg.AdminUsername)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestMissing(t *testing.T) {
	full := Config{
		DBDriver:      "postgres",
		DatabaseURL:   "postgres://quiz@localhost/quiz",
		JWTSecret:     []byte("s3cret"),
		AdminUsername: "root",
		AdminPassword: "toor",
		ImageBackend:  "local",
		NotifyBackend: "smtp",
	}
	assert.Empty(t, full.Missing())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   []string
	}{
		{name: "no secret", mutate: func(c *Config) { c.JWTSecret = nil }, want: []string{"JWT_SECRET"}},
		{name: "blank admin", mutate: func(c *Config) { c.AdminUsername = "  "; c.AdminPassword = "" }, want: []string{"ADMIN_USERNAME", "ADMIN_PASSWORD"}},
		{name: "postgres without url", mutate: func(c *Config) { c.DatabaseURL = "" }, want: []string{"DATABASE_URL"}},
		{name: "sqlite without url", mutate: func(c *Config) { c.DBDriver = "sqlite"; c.DatabaseURL = "" }},
		{name: "s3 without bucket", mutate: func(c *Config) { c.ImageBackend = "s3" }, want: []string{"S3_BUCKET", "S3_PUBLIC_URL"}},
		{name: "kafka notifier without brokers", mutate: func(c *Config) { c.NotifyBackend = "kafka" }, want: []string{"KAFKA_BROKERS"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := full
			tt.mutate(&c)
			if tt.want == nil {
				assert.Empty(t, c.Missing())
				return
			}
			assert.Equal(t, tt.want, c.Missing())
		})
	}
}
