package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, "memory", cfg.VectorBackend)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAGTopK)
	assert.Equal(t, 60*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.TrustUserHeader)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFile_EnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=9090\nRAG_TOP_K=3\nTRUST_USER_HEADER=true\nUPSTREAM_TIMEOUT=5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CHUNK_SIZE", "500")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.RAGTopK)
	assert.True(t, cfg.TrustUserHeader)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 500, cfg.ChunkSize)
}

func TestValidate(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef"

	tests := []struct {
		name    string
		cfg     Config
		wantErr []error
	}{
		{name: "defaults", cfg: Config{}, wantErr: []error{ErrMissingAPIKey, ErrWeakJWTSecret}},
		{name: "short secret", cfg: Config{APIKey: "k", JWTSecret: "secret"}, wantErr: []error{ErrWeakJWTSecret}},
		{name: "insecure auth still needs a secret", cfg: Config{InsecureAuth: true}, wantErr: []error{ErrWeakJWTSecret}},
		{name: "insecure auth", cfg: Config{InsecureAuth: true, JWTSecret: strong}},
		{name: "complete", cfg: Config{APIKey: "k", JWTSecret: strong}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestLoadFile_DefaultsDoNotValidate(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey)
	assert.False(t, cfg.InsecureAuth)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}
