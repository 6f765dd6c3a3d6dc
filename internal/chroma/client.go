package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Client talks to a Chroma server over its v1 REST API. Every public method
// except EnsureCollection and Heartbeat swallows failures: the index is a
// disposable projection of the complaints table.
//
// After a network failure or a 5xx the client stops calling the server for
// cooldown, so an unreachable host costs one timeout rather than one per
// request.
type Client struct {
	baseURL    string
	collection string
	threshold  float64
	cooldown   time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
	now        func() time.Time

	mu        sync.Mutex
	ensured   bool
	downUntil time.Time
}

// DefaultCooldown is how long the client skips the server after an outage.
const DefaultCooldown = 30 * time.Second

// ErrUnavailable is returned by EnsureCollection while the client is
// cooling down after a failure.
var ErrUnavailable = errors.New("chroma unavailable")

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("chroma request failed with status %d: %s", e.status, e.body)
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		collection: collection,
		threshold:  cfg.DuplicateThreshold,
		cooldown:   DefaultCooldown,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Enabled reports whether a server URL was configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

func (c *Client) Collection() string {
	return c.collection
}

// EnsureCollection creates the collection with cosine space if missing.
// Once it has succeeded, later calls return immediately. The lock is not
// held across the request; concurrent first calls each send the idempotent
// get-or-create.
func (c *Client) EnsureCollection(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	c.mu.Lock()
	ensured := c.ensured
	c.mu.Unlock()
	if ensured {
		return nil
	}
	if !c.available() {
		return ErrUnavailable
	}

	req := createCollectionRequest{
		Name:        c.collection,
		Metadata:    map[string]string{"hnsw:space": "cosine"},
		GetOrCreate: true,
	}
	if err := c.makeRequest(ctx, http.MethodPost, "/api/v1/collections", req, nil); err != nil {
		c.logger.WithError(err).WithField("collection", c.collection).Warn("Failed to ensure Chroma collection")
		return err
	}

	c.mu.Lock()
	first := !c.ensured
	c.ensured = true
	c.mu.Unlock()
	if first {
		c.logger.WithField("collection", c.collection).Info("Chroma collection ready")
	}
	return nil
}

// available reports whether the client is outside a cooldown window.
func (c *Client) available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.now().Before(c.downUntil)
}

// record opens the cooldown window on outages and closes it on success.
// 4xx replies mean the server is up, so they leave the window alone.
func (c *Client) record(err error) {
	var serr *statusError
	if errors.As(err, &serr) && serr.status < 500 {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.downUntil = time.Time{}
		return
	}
	if c.now().Before(c.downUntil) {
		return
	}
	c.downUntil = c.now().Add(c.cooldown)
	c.logger.WithError(err).WithField("cooldown", c.cooldown).Warn("Chroma unreachable, pausing vector calls")
}

// Upsert stores or replaces the vector for id. It reports whether the write
// went through; failures are logged only.
func (c *Client) Upsert(ctx context.Context, id string, vector []float32, category, document string) bool {
	if !c.Enabled() || !c.available() {
		return false
	}
	if err := c.EnsureCollection(ctx); err != nil {
		return false
	}

	req := upsertRequest{
		IDs:        []string{id},
		Embeddings: [][]float32{vector},
		Metadatas:  []Metadata{{Category: category}},
		Documents:  []string{document},
	}
	if err := c.makeRequest(ctx, http.MethodPost, c.collectionPath("upsert"), req, nil); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"collection": c.collection,
			"id":         id,
		}).Warn("Failed to upsert complaint embedding")
		return false
	}

	c.logger.WithFields(logrus.Fields{"id": id, "category": category}).Debug("Upserted complaint embedding")
	return true
}

// Query returns up to k neighbors, nearest first. It returns nil on any
// failure or when the client is not configured.
func (c *Client) Query(ctx context.Context, vector []float32, k int) []Neighbor {
	if !c.Enabled() || len(vector) == 0 || !c.available() {
		return nil
	}
	if err := c.EnsureCollection(ctx); err != nil {
		return nil
	}
	if k < 1 {
		k = 1
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        k,
		Include:         []string{"metadatas", "distances"},
	}

	var resp QueryResponse
	if err := c.makeRequest(ctx, http.MethodPost, c.collectionPath("query"), req, &resp); err != nil {
		c.logger.WithError(err).WithField("collection", c.collection).Warn("Chroma query failed")
		return nil
	}

	return resp.neighbors()
}

// HasDuplicate reports whether the nearest stored vector is at least as
// similar as the configured threshold. A zero threshold treats any
// neighbor as a duplicate.
func (c *Client) HasDuplicate(ctx context.Context, vector []float32) bool {
	neighbors := c.Query(ctx, vector, 1)
	if len(neighbors) == 0 {
		return false
	}
	if c.threshold <= 0 {
		return true
	}
	return neighbors[0].Similarity() >= c.threshold
}

// Delete removes the vector for id, best effort.
func (c *Client) Delete(ctx context.Context, id string) {
	if !c.Enabled() || !c.available() {
		return
	}
	if err := c.makeRequest(ctx, http.MethodPost, c.collectionPath("delete"), deleteRequest{IDs: []string{id}}, nil); err != nil {
		c.logger.WithError(err).WithField("id", id).Warn("Failed to delete complaint embedding")
	}
}

// Heartbeat checks that the server is up. It ignores the cooldown, and a
// successful beat ends it.
func (c *Client) Heartbeat(ctx context.Context) error {
	if !c.Enabled() {
		return fmt.Errorf("chroma url not configured")
	}
	return c.makeRequest(ctx, http.MethodGet, "/api/v1/heartbeat", nil, nil)
}

func (r *QueryResponse) neighbors() []Neighbor {
	if len(r.Distances) == 0 {
		return nil
	}
	distances := r.Distances[0]
	var metadatas []*Metadata
	if len(r.Metadatas) > 0 {
		metadatas = r.Metadatas[0]
	}
	var ids []string
	if len(r.IDs) > 0 {
		ids = r.IDs[0]
	}

	out := make([]Neighbor, 0, len(distances))
	for i, d := range distances {
		n := Neighbor{Distance: d}
		if i < len(metadatas) && metadatas[i] != nil {
			n.Category = strings.ToUpper(metadatas[i].Category)
		}
		if i < len(ids) {
			n.ID = ids[i]
		}
		out = append(out, n)
	}
	return out
}

func (c *Client) collectionPath(op string) string {
	return "/api/v1/collections/" + url.PathEscape(c.collection) + "/" + op
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	err := c.do(ctx, method, endpoint, payload, result)
	c.record(err)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	fullURL := c.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)

		c.logger.WithFields(logrus.Fields{
			"method":       method,
			"url":          fullURL,
			"payload_size": len(jsonData),
		}).Debug("Making Chroma request")
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{status: resp.StatusCode, body: utils.Truncate(string(responseBody), 500)}
	}

	if result != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
