package gemini

import "time"

// Config carries the endpoint settings for both generation and embedding.
type Config struct {
	APIURL     string
	APIKey     string
	Model      string
	EmbedURL   string
	EmbedModel string
	Timeout    time.Duration
	Retry      RetryConfig
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type GenerateRequest struct {
	Model    string    `json:"model,omitempty"`
	Contents []Content `json:"contents"`
}

type Candidate struct {
	Content *Content `json:"content"`
}

type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Text returns the first candidate's first part, or false when the reply
// does not have the expected shape.
func (r *GenerateResponse) Text() (string, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	return content.Parts[0].Text, true
}

type EmbedRequest struct {
	Model   string  `json:"model,omitempty"`
	Content Content `json:"content"`
}

type EmbedResponse struct {
	Embedding *struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// ProviderError is the error body returned by the generative API.
type ProviderError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// ComposePrompt joins a system instruction, retrieved context and the user
// question into the single text part the endpoint receives.
func ComposePrompt(system, context, question string) string {
	return system + "\n\nContext:\n" + context + "\n\nQuestion: " + question
}
