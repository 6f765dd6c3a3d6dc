package gemini

import (
	"context"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// FallbackDimensions is the length of the locally computed vector.
const FallbackDimensions = 384

// Embedder turns text into a vector. Provider failures never reach the
// caller; they degrade to FallbackEmbedding.
type Embedder struct {
	transport
	embedURL string
	model    string
	retry    RetryConfig
}

func NewEmbedder(cfg Config, logger *logrus.Logger) *Embedder {
	return &Embedder{
		transport: newTransport(cfg.APIKey, cfg.Timeout, logger),
		embedURL:  cfg.EmbedURL,
		model:     cfg.EmbedModel,
		retry:     cfg.Retry,
	}
}

// Embed returns the provider vector, or the fallback when the provider is
// unconfigured or fails. Only blank input is reported as an error.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	if e.embedURL == "" || e.apiKey == "" {
		e.logger.Debug("Embedding endpoint not configured, using fallback embedding")
		return FallbackEmbedding(text), nil
	}

	values, err := e.remote(ctx, text)
	if err != nil {
		e.logger.WithError(err).WithField("text_length", len(text)).Warn("Gemini embedding failed, using fallback embedding")
		return FallbackEmbedding(text), nil
	}

	e.logger.WithField("dimensions", len(values)).Debug("Embedding generated")
	return values, nil
}

func (e *Embedder) remote(ctx context.Context, text string) ([]float32, error) {
	req := EmbedRequest{
		Model:   e.model,
		Content: Content{Parts: []Part{{Text: text}}},
	}

	var resp EmbedResponse
	err := retryOperation(ctx, e.retry, e.logger, func() error {
		resp = EmbedResponse{}
		return e.post(ctx, e.embedURL, req, &resp)
	})
	if err != nil {
		return nil, err
	}

	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &Error{Kind: KindMalformedReply, Hint: "reply missing embedding.values"}
	}
	return resp.Embedding.Values, nil
}

// FallbackEmbedding derives a deterministic vector from the text hash:
// value[i] = sin(hash + i) / 10.
func FallbackEmbedding(text string) []float32 {
	hash := int64(stringHash(text))
	vec := make([]float32, FallbackDimensions)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(hash+int64(i)))) / 10
	}
	return vec
}

// stringHash is the 31-multiplier polynomial hash over UTF-16 code units,
// wrapping at 32 bits. Vectors already stored in the index were produced with
// this exact function, so it must not change.
func stringHash(s string) int32 {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			h = 31*h + int32(0xD800+(r>>10))
			h = 31*h + int32(0xDC00+(r&0x3FF))
			continue
		}
		h = 31*h + int32(r)
	}
	return h
}
