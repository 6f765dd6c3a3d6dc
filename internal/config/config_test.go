package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RateLimit)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "hostel_complaints_embeddings", cfg.Chroma.Collection)
	assert.InDelta(t, 0.90, cfg.Chroma.DuplicateThreshold, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.Chroma.Timeout)
	assert.False(t, cfg.Chroma.SyncOnStartup)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(1), cfg.Snowflake.Node)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001", "http://127.0.0.1:3000"}, cfg.Server.CORSOrigins)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHROMA_URL", "http://chroma:8000")
	t.Setenv("CHROMA_DUPLICATE_THRESHOLD", "0")
	t.Setenv("CHROMA_SYNC_ON_STARTUP", "true")
	t.Setenv("GEMINI_TIMEOUT", "5s")
	t.Setenv("GEMINI_API_KEY", "abc123")
	t.Setenv("SERVER_CORS_ORIGINS", "https://desk.example.edu, ,https://admin.example.edu")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://chroma:8000", cfg.Chroma.URL)
	assert.Zero(t, cfg.Chroma.DuplicateThreshold)
	assert.True(t, cfg.Chroma.SyncOnStartup)
	assert.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "abc123", cfg.GeminiConfig().APIKey)
	assert.Equal(t, "http://chroma:8000", cfg.ChromaConfig().URL)
	assert.Equal(t, []string{"https://desk.example.edu", "https://admin.example.edu"}, cfg.Server.CORSOrigins)
}

func TestValidateGemini(t *testing.T) {
	valid := "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

	tests := []struct {
		name    string
		key     string
		url     string
		wantErr string
	}{
		{"ok", "AIzaKey", valid, ""},
		{"missing key", "", valid, "GEMINI_API_KEY is required"},
		{"quoted key", `"AIzaKey"`, valid, "whitespace or quotes"},
		{"spaced key", "AIza Key", valid, "whitespace or quotes"},
		{"missing url", "AIzaKey", "", "GEMINI_API_URL is required"},
		{"key in url", "AIzaKey", valid + "?key=abc", "must not include the key"},
		{"wrong endpoint", "AIzaKey", "https://example.com/v1/chat", "generateContent"},
		{"bad scheme", "AIzaKey", "ftp://x/models/m:generateContent", "scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Gemini.APIKey = tt.key
			cfg.Gemini.APIURL = tt.url
			err := cfg.ValidateGemini()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateChroma(t *testing.T) {
	cfg := &Config{}
	cfg.Chroma.Collection = "c"
	assert.NoError(t, cfg.ValidateChroma())

	cfg.Chroma.URL = "chroma:8000"
	assert.Error(t, cfg.ValidateChroma())

	cfg.Chroma.URL = "http://chroma:8000"
	cfg.Chroma.DuplicateThreshold = 1.5
	assert.Error(t, cfg.ValidateChroma())
}

func TestValidateAuth(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.ValidateAuth())

	cfg.Auth.JWTSecret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.ValidateAuth())
}
