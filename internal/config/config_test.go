package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	for _, k := range []string{"PORT", "API_PREFIX", "BCRYPT_COST", "ADMIN_EMAIL", "ADMIN_PASSWORD", "CORS_ALLOWED_ORIGINS", "LOGIN_RATE_PER_MINUTE", "LOGIN_RATE_BURST", "JWT_ISSUER"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ":3000", cfg.HTTPAddress())
	assert.Equal(t, "", cfg.APIPrefix)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "gatekeeper", cfg.JWTIssuer)
	assert.Equal(t, DefaultAdminEmail, cfg.Admin.Email)
	assert.Equal(t, DefaultAdminPassword, cfg.Admin.Password)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, RateConfig{PerMinute: 20, Burst: 10}, cfg.Login)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("API_PREFIX", "api/")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOG_DEV", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.Log.Dev)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET": ""}},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": "", "JWT_SECRET": "x"}},
		{"mongo without uri", map[string]string{"STORE_DRIVER": "mongo", "MONGODB_URI": "", "JWT_SECRET": "x"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite", "JWT_SECRET": "x"}},
		{"bad cost", map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET": "x", "BCRYPT_COST": "ten"}},
		{"negative rate", map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET": "x", "LOGIN_RATE_PER_MINUTE": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
