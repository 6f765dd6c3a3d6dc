package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

const maxLoggedBody = 500

var keyParamPattern = regexp.MustCompile(`([?&]key=)[^&]*`)

// transport is the shared HTTP plumbing for the generate and embed endpoints.
type transport struct {
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func newTransport(apiKey string, timeout time.Duration, logger *logrus.Logger) transport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return transport{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Client calls the generateContent endpoint.
type Client struct {
	transport
	apiURL string
	model  string
	retry  RetryConfig
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	return &Client{
		transport: newTransport(cfg.APIKey, cfg.Timeout, logger),
		apiURL:    cfg.APIURL,
		model:     cfg.Model,
		retry:     cfg.Retry,
	}
}

// Generate sends a single-turn prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyText
	}

	req := GenerateRequest{
		Model:    c.model,
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	}

	var resp GenerateResponse
	err := retryOperation(ctx, c.retry, c.logger, func() error {
		resp = GenerateResponse{}
		return c.post(ctx, c.apiURL, req, &resp)
	})
	if err != nil {
		return "", err
	}

	text, ok := resp.Text()
	if !ok {
		c.logger.WithField("candidates", len(resp.Candidates)).Error("Gemini reply missing candidates/content/parts")
		return "", &Error{Kind: KindMalformedReply, Hint: "reply missing candidates[0].content.parts[0].text"}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindEmptyReply, Hint: "candidate text is blank"}
	}
	return text, nil
}

// Ping checks that the endpoint host answers at all. Any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	if c.apiURL == "" {
		return fmt.Errorf("gemini api url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, withKey(c.apiURL, ""), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (t *transport) post(ctx context.Context, endpoint string, payload interface{}, result interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	fullURL := withKey(endpoint, t.apiKey)
	safeURL := MaskKey(fullURL)

	t.logger.WithFields(logrus.Fields{
		"url":          safeURL,
		"payload_size": len(jsonData),
	}).Debug("Making Gemini API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL, key included.
		t.logger.WithFields(logrus.Fields{"url": safeURL}).Error("Gemini API unreachable")
		return &Error{Kind: KindUnreachable, Hint: "endpoint unreachable", Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindUnreachable, Hint: "failed to read response", Err: err}
	}

	t.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"url":           safeURL,
		"response_size": len(responseBody),
	}).Debug("Gemini API response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gerr := classifyStatus(resp.StatusCode, responseBody)
		t.logger.WithFields(logrus.Fields{
			"status_code":   resp.StatusCode,
			"url":           safeURL,
			"kind":          gerr.Kind,
			"hint":          gerr.Hint,
			"response_body": utils.Truncate(string(responseBody), maxLoggedBody),
		}).Error("Gemini API request failed")
		return gerr
	}

	if len(bytes.TrimSpace(responseBody)) == 0 {
		return &Error{Kind: KindEmptyReply, Status: resp.StatusCode, Hint: "empty response body"}
	}

	if result != nil {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return &Error{Kind: KindMalformedReply, Status: resp.StatusCode, Hint: "response is not valid JSON", Err: err}
		}
	}

	return nil
}

func withKey(endpoint, key string) string {
	if key == "" {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "key=" + url.QueryEscape(key)
}

// MaskKey hides the value of a key query parameter.
func MaskKey(rawURL string) string {
	return keyParamPattern.ReplaceAllString(rawURL, "${1}****")
}

func unwrapURLError(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
