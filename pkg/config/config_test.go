package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "noreply@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("APP_URL", "https://app.example.com")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.True(t, cfg.Mail.Secure)
	assert.Equal(t, 10*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.VerificationTTL)
	assert.Equal(t, "/auth/verification-success", cfg.VerifySuccessPath)
	assert.Equal(t, "noreply@example.com", cfg.MailFrom())
	assert.Equal(t, time.Hour, cfg.JWTTTL())
	assert.False(t, cfg.IsDevelopment())
}

func TestBaseURLFallback(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_URL", "")
	t.Setenv("AUTH_URL", "https://auth.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com", cfg.BaseURL())

	cfg.AppURL = "https://app.example.com"
	assert.Equal(t, "https://app.example.com", cfg.BaseURL())
}

func TestLoadFailsWithoutBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_URL", "")
	t.Setenv("AUTH_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_URL or AUTH_URL")
}

func TestLoadFailsWithoutMailSettings(t *testing.T) {
	setRequiredEnv(t)
	require.NoError(t, os.Unsetenv("SMTP_HOST"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestLoadFromFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
store:
  driver: sqlite
  database_url: file:test.db
mail:
  host: smtp.example.com
  port: 587
  username: user
  password: pass
app_url: https://from-file.example.com
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	// environment variables override the file, so drop the ones it sets
	for _, key := range []string{"APP_URL", "DATABASE_URL", "SMTP_PORT"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "https://from-file.example.com", cfg.BaseURL())
}
