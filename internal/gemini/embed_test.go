package gemini

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("key"))

		var req EmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "embedding-001", req.Model)
		assert.Equal(t, "leaking tap", req.Content.Parts[0].Text)

		w.Write([]byte(`{"embedding":{"values":[0.1,0.2,0.3]}}`))
	}))
	defer server.Close()

	e := NewEmbedder(Config{EmbedURL: server.URL, APIKey: "k", EmbedModel: "embedding-001", Retry: testRetry()}, logrus.New())
	vec, err := e.Embed(context.Background(), "leaking tap")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedder_FallsBackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewEmbedder(Config{EmbedURL: server.URL, APIKey: "k", Retry: testRetry()}, logrus.New())
	vec, err := e.Embed(context.Background(), "fan not working")
	require.NoError(t, err)
	assert.Equal(t, FallbackEmbedding("fan not working"), vec)
}

func TestEmbedder_FallsBackOnMissingValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":{}}`))
	}))
	defer server.Close()

	e := NewEmbedder(Config{EmbedURL: server.URL, APIKey: "k"}, logrus.New())
	vec, err := e.Embed(context.Background(), "door broken")
	require.NoError(t, err)
	assert.Len(t, vec, FallbackDimensions)
}

func TestEmbedder_Unconfigured(t *testing.T) {
	e := NewEmbedder(Config{}, logrus.New())
	vec, err := e.Embed(context.Background(), "light flickers")
	require.NoError(t, err)
	assert.Len(t, vec, FallbackDimensions)
}

func TestEmbedder_EmptyText(t *testing.T) {
	e := NewEmbedder(Config{}, logrus.New())
	_, err := e.Embed(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestFallbackEmbedding_Deterministic(t *testing.T) {
	for _, text := range []string{"a", "tap is leaking in A401", "ünïcödé 🚰"} {
		first := FallbackEmbedding(text)
		second := FallbackEmbedding(text)
		require.Len(t, first, 384)
		for i := range first {
			assert.Equal(t, math.Float32bits(first[i]), math.Float32bits(second[i]))
		}
	}
	assert.NotEqual(t, FallbackEmbedding("a"), FallbackEmbedding("b"))
}

func TestFallbackEmbedding_Values(t *testing.T) {
	vec := FallbackEmbedding("hello")
	hash := float64(99162322)
	assert.InDelta(t, math.Sin(hash)/10, vec[0], 1e-6)
	assert.InDelta(t, math.Sin(hash+383)/10, vec[383], 1e-6)
}

func TestStringHash(t *testing.T) {
	assert.Equal(t, int32(0), stringHash(""))
	assert.Equal(t, int32(97), stringHash("a"))
	assert.Equal(t, int32(99162322), stringHash("hello"))
	assert.Equal(t, int32(847544858), stringHash("hostel complaint"))
	// Wraps past 32 bits.
	assert.Equal(t, int32(-2082230532), stringHash("water leakage in bathroom"))
	// Astral runes hash as a surrogate pair.
	assert.Equal(t, int32(1773075), stringHash("🚰"))
}
