// Package llss talks to the low-level screen service that owns the physical
// displays: frame submission and state-change notification.
package llss

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Client submits frames and notifications to the display service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a display-service client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// FrameResponse is the display service's answer to a frame submission.
type FrameResponse struct {
	FrameID string `json:"frame_id"`
	Hash    string `json:"hash"`
}

// SubmitFrame uploads a rendered frame for an instance.
func (c *Client) SubmitFrame(ctx context.Context, instanceID string, image []byte) (*FrameResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/instances/"+instanceID+"/frames", bytes.NewReader(image))
	if err != nil {
		return nil, errors.Wrap(err, "build frame request")
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "submit frame")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("submit frame: %s", resp.Status)
	}
	var out FrameResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode frame response")
	}
	return &out, nil
}

// Notify tells the display service the instance's state changed.
func (c *Client) Notify(ctx context.Context, instanceID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/instances/"+instanceID+"/notify", nil)
	if err != nil {
		return errors.Wrap(err, "build notify request")
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "notify")
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode >= 400 {
		return errors.Errorf("notify: %s", resp.Status)
	}
	return nil
}

// Health checks whether the display service is reachable.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// FrameHash computes the content hash used to deduplicate frames.
func FrameHash(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}
