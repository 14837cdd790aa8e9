package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.NotEmpty(t, cfg.AllowedMimeTypes)
	assert.False(t, cfg.StagedUploadsEnabled())
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("LINGVERA_ADDRESS", ":9090")
	t.Setenv("LINGVERA_ENCRYPTION_SECRET", "env-secret")
	t.Setenv("LINGVERA_STORAGE_DIR", "/mnt/vol")
	t.Setenv("LINGVERA_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("LINGVERA_ALLOWED_MIME_TYPES", "text/csv, application/vnd.ms-excel")
	t.Setenv("LINGVERA_ACCESS_TOKEN_VALIDITY", "30m")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "env-secret", cfg.EncryptionSecret)
	assert.Equal(t, "/mnt/vol", cfg.StorageDir)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"text/csv", "application/vnd.ms-excel"}, cfg.AllowedMimeTypes)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestParseEnv_MalformedValuesIgnored(t *testing.T) {
	t.Setenv("LINGVERA_MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("LINGVERA_ACCESS_TOKEN_VALIDITY", "soon")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestParseJson_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	content := `{
		"endpoint_addr": ":7070",
		"encryption_secret": "json-secret",
		"access_token_validity_duration": "45m",
		"max_upload_bytes": 2048
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"app", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, "json-secret", cfg.EncryptionSecret)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	// untouched fields keep defaults
	assert.Equal(t, "secretKey", cfg.SecretKey)
}

func TestParseFlags_Overlay(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"app", "-a", ":6060", "-k", "flag-secret", "-f", "/srv/files", "-t", "5"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":6060", cfg.EndpointAddr)
	assert.Equal(t, "flag-secret", cfg.EncryptionSecret)
	assert.Equal(t, "/srv/files", cfg.StorageDir)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestUploadPolicy(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.MaxUploadBytes = 100
	cfg.AllowedMimeTypes = []string{"text/csv"}

	p := cfg.UploadPolicy()
	assert.True(t, p.ValidateType("text/csv"))
	assert.False(t, p.ValidateType("application/pdf"))
	assert.True(t, p.ValidateSize(100))
	assert.False(t, p.ValidateSize(101))
}
