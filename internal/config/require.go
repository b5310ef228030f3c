package config

import (
	"log"
	"strings"
)

// required accumulates the names of unset settings so a misconfigured
// process reports all of them in one line.
type required []string

func (r *required) str(value, envName string) {
	if strings.TrimSpace(value) == "" {
		*r = append(*r, envName)
	}
}

func (r *required) bytes(value []byte, envName string) {
	if len(value) == 0 {
		*r = append(*r, envName)
	}
}

// Missing lists the required env keys that c leaves empty.
func (c Config) Missing() []string {
	var r required
	r.bytes(c.JWTSecret, "JWT_SECRET")
	r.str(c.AdminUsername, "ADMIN_USERNAME")
	r.str(c.AdminPassword, "ADMIN_PASSWORD")
	if c.DBDriver == "postgres" {
		r.str(c.DatabaseURL, "DATABASE_URL")
	}
	if c.ImageBackend == "s3" {
		r.str(c.S3Bucket, "S3_BUCKET")
		r.str(c.S3PublicURL, "S3_PUBLIC_URL")
	}
	if c.NotifyBackend == "kafka" && len(c.KafkaBrokers) == 0 {
		r = append(r, "KAFKA_BROKERS")
	}
	return r
}

// Validate stops the process when a required value is missing.
func (c Config) Validate() {
	if m := c.Missing(); len(m) > 0 {
		log.Fatalf("missing required env: %s", strings.Join(m, ", "))
	}
}
