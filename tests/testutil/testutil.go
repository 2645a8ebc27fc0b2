package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/bistro-orders-api/config"
)

// baseEnv is a complete configuration that never touches a shared database or S3
var baseEnv = map[string]string{
	"GO_ENV":             "test",
	"JWT_SECRET":         "integration-test-secret",
	"JWT_REFRESH_SECRET": "integration-test-refresh-secret",
	"JWT_ISSUER":         "bistro-orders-api",
	"JWT_AUDIENCE":       "bistro-web",
	"BUSINESS_TIMEZONE":  "Europe/Bucharest",
	"ALLOWED_ORIGINS":    "http://localhost:5173",
	"AWS_S3_BUCKET":      "",
	"KAFKA_BROKERS":      "",
	"LOG_LEVEL":          "error",
	"ADMIN_EMAIL":        "admin@bistro.test",
	"ADMIN_PASSWORD":     "admin-parola",
}

// LoadTestConfig loads the configuration the way the server does, from the environment,
// with a private SQLite file and upload directory under dir.
// overrides replace individual variables.
func LoadTestConfig(t *testing.T, dir string, overrides map[string]string) *config.Config {
	t.Helper()

	env := map[string]string{
		"DATABASE_URL": "sqlite://" + filepath.Join(dir, "bistro.db"),
		"UPLOAD_DIR":   filepath.Join(dir, "uploads"),
	}
	for k, v := range baseEnv {
		env[k] = v
	}
	for k, v := range overrides {
		env[k] = v
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.IsTest(), "test configuration must run with GO_ENV=test")
	return cfg
}
