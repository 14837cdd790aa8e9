package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays configuration from environment variables. Unset
// variables leave the current values untouched. Malformed numeric or
// duration values are ignored rather than failing startup, matching the
// overlay semantics of the JSON layer.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("LINGVERA_ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("LINGVERA_DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("LINGVERA_SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("LINGVERA_ACCESS_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("LINGVERA_REFRESH_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("LINGVERA_ENCRYPTION_SECRET"); ok {
		config.EncryptionSecret = v
	}
	if v, ok := os.LookupEnv("LINGVERA_STORAGE_DIR"); ok {
		config.StorageDir = v
	}
	if v, ok := os.LookupEnv("LINGVERA_MAX_UPLOAD_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.MaxUploadBytes = n
		}
	}
	if v, ok := os.LookupEnv("LINGVERA_ALLOWED_MIME_TYPES"); ok {
		var types []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		if len(types) > 0 {
			config.AllowedMimeTypes = types
		}
	}
	if v, ok := os.LookupEnv("LINGVERA_S3_ROOT_USER"); ok {
		config.S3RootUser = v
	}
	if v, ok := os.LookupEnv("LINGVERA_S3_ROOT_PASSWORD"); ok {
		config.S3RootPassword = v
	}
	if v, ok := os.LookupEnv("LINGVERA_S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := os.LookupEnv("LINGVERA_S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := os.LookupEnv("LINGVERA_S3_BASE_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
}
