package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "REMBG_MODEL", "REMBG_BACKEND", "REMBG_URL", "OUTPUT_DIR", "OUTPUT_RETENTION", "REDIS_ADDR", "RABBITMQ_URL", "ALLOWED_TYPES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5050", cfg.Server.Port)
	assert.Equal(t, "u2net", cfg.Model.Name)
	assert.Equal(t, BackendHTTP, cfg.Model.Backend)
	assert.Equal(t, "http://localhost:7000", cfg.Model.EngineURL)
	assert.Equal(t, "./outputs", cfg.Storage.OutputDir)
	assert.Zero(t, cfg.Storage.Retention)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "background_removed", cfg.RabbitMQ.Queue)
	assert.Equal(t, DefaultAllowedTypes, cfg.Storage.AllowedTypes)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REMBG_MODEL", "isnet-general-use")
	t.Setenv("REMBG_BACKEND", "ONNX")
	t.Setenv("REMBG_URL", "http://rembg:7000/")
	t.Setenv("REMBG_PRELOAD", "true")
	t.Setenv("OUTPUT_RETENTION", "72h")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("ALLOWED_TYPES", "image/png, image/webp,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "isnet-general-use", cfg.Model.Name)
	assert.Equal(t, BackendONNX, cfg.Model.Backend)
	assert.Equal(t, "http://rembg:7000", cfg.Model.EngineURL)
	assert.True(t, cfg.Model.Preload)
	assert.Equal(t, 72*time.Hour, cfg.Storage.Retention)
	assert.Equal(t, int64(1024), cfg.Storage.MaxFileSize)
	assert.Equal(t, []string{"image/png", "image/webp"}, cfg.Storage.AllowedTypes)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "zero")
	t.Setenv("REMBG_PRELOAD", "maybe")
	t.Setenv("ALLOWED_TYPES", " , ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.Model.Preload)
	assert.Equal(t, DefaultAllowedTypes, cfg.Storage.AllowedTypes)
}
