package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
server:
  port: 9090
  mode: release
store:
  name: Course Shop
  currency_symbol: "$"
jwt:
  secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 72, cfg.JWT.ExpireHours)

	assert.Equal(t, "Course Shop", cfg.Store.Name)
	assert.Equal(t, "$", cfg.Store.CurrencySymbol)
	assert.Equal(t, "Asia/Kolkata", cfg.Store.Timezone)
	assert.Equal(t, "support@example.com", cfg.Store.SupportEmail)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "database", cfg.Storage.Driver)
}

func TestLoad_PrefersLocalConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "server:\n  port: 1000\n")
	writeConfig(t, dir, "config.local.yaml", "server:\n  port: 2000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 1},
		Storage: StorageConfig{Driver: "redis"},
		Store:   StoreSettings{CurrencySymbol: "€"},
		Upload:  UploadConfig{AllowedExtensions: []string{".pdf"}},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, 1, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "€", cfg.Store.CurrencySymbol)
	assert.Equal(t, "Digital Store", cfg.Store.Name)
	assert.Equal(t, []string{".pdf"}, cfg.Upload.AllowedExtensions)
	assert.NotEmpty(t, cfg.CORS.AllowedMethods)
	assert.Equal(t, "5 0 * * *", cfg.Cron.CouponSweep)
}

func TestStoreSettings_Location(t *testing.T) {
	s := StoreSettings{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, s.Location())

	s.Timezone = "UTC"
	assert.Equal(t, "UTC", s.Location().String())
}
