package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 8080
  allowedOrigins:
    - https://example.com
database:
  driver: mysql
  host: localhost
  port: 3306
  user: roi
  password: filepass
  name: roi_capture
redis:
  enabled: true
  addr: localhost:6379
smtp:
  enabled: true
  host: smtp.example.com
  port: "587"
  fromEmail: hello@example.com
  internalEmail: sales@example.com
rateLimit:
  capacity: 30
  refillRate: 5
auth:
  internalKeys:
    - file-key
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "sales@example.com", cfg.SMTP.InternalEmail)
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
	assert.Equal(t, []string{"file-key"}, cfg.Auth.InternalKeys)
}

func TestEnvOverridesSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("HUBSPOT_API_KEY", "hs-token")
	t.Setenv("INTERNAL_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "envpass", cfg.Database.Password)
	assert.Equal(t, "hs-token", cfg.HubSpot.APIKey)
	assert.True(t, cfg.HubSpot.Enabled, "token via env enables the integration")
	assert.ElementsMatch(t, []string{"file-key", "env-key"}, cfg.Auth.InternalKeys)
}

func TestDSNBuilders(t *testing.T) {
	cfg, err := Load(writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t,
		"roi:filepass@tcp(localhost:3306)/roi_capture?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
	assert.Equal(t,
		"host=localhost port=3306 user=roi password=filepass dbname=roi_capture sslmode=disable",
		cfg.PostgresDSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
