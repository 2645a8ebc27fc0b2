package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "Europe/Bucharest", cfg.Location().String())
	assert.Equal(t, "secret.refresh", cfg.JWTRefreshSecret, "refresh secret is derived outside production")
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.UsesS3())
}

func TestLoadRecordsEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging"), []byte("PORT=9090\n"), 0o600))
	t.Chdir(dir)

	t.Setenv("GO_ENV", "staging")
	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ".env.staging", cfg.EnvFile)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("GO_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://db/bistro")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.EnvFile)
	assert.True(t, cfg.IsProduction())
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing database url",
			cfg:     Config{JWTSecret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, DBTimeout: time.Second, BusinessTimezone: "UTC"},
			wantErr: true,
		},
		{
			name:    "missing jwt secret",
			cfg:     Config{DatabaseURL: "x", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, DBTimeout: time.Second, BusinessTimezone: "UTC"},
			wantErr: true,
		},
		{
			name:    "production needs refresh secret",
			cfg:     Config{DatabaseURL: "x", JWTSecret: "s", GoEnv: "production", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, DBTimeout: time.Second, BusinessTimezone: "UTC"},
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			cfg:     Config{DatabaseURL: "x", JWTSecret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, DBTimeout: time.Second, BusinessTimezone: "Mars/Olympus"},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			cfg:     Config{DatabaseURL: "x", JWTSecret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, BusinessTimezone: "UTC"},
			wantErr: true,
		},
		{
			name: "valid",
			cfg:  Config{DatabaseURL: "x", JWTSecret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, DBTimeout: time.Second, BusinessTimezone: "UTC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocationDefaultsToUTC(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.UTC, cfg.Location())
}
