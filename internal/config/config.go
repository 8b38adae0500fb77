package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL        string
	ServerAddr         string
	EscalationInterval time.Duration
	EscalationBatch    int
	AuditSigningKey    []byte
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "leave_portal")
		pass := getenv("POSTGRES_PASSWORD", "leave_portal_pass")
		db := getenv("POSTGRES_DB", "leave_portal")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	interval := parseDuration(getenv("ESCALATION_INTERVAL", "10m"), 10*time.Minute)
	batch := parseInt(getenv("ESCALATION_BATCH", "200"), 200)

	var signingKey []byte
	if key := os.Getenv("AUDIT_SIGNING_KEY"); key != "" {
		signingKey = []byte(key)
	}

	return &Config{
		DatabaseURL:        dsn,
		ServerAddr:         addr,
		EscalationInterval: interval,
		EscalationBatch:    batch,
		AuditSigningKey:    signingKey,
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
