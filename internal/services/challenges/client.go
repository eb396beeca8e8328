// Package challenges is the read port onto the external challenge
// service, used for lifecycle gating
package challenges

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gavel/internal/platform/config"
	perr "gavel/internal/platform/errors"
	"gavel/internal/platform/logger"
)

// Lifecycle statuses this service cares about
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Challenge is the subset of the remote record this service needs
type Challenge struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Terminal reports whether the challenge has passed its last open phase
func (c *Challenge) Terminal() bool {
	if c == nil {
		return false
	}
	switch c.Status {
	case StatusCompleted, StatusCancelled:
		return true
	}
	// cancellation variants such as "Cancelled - Client Request"
	return strings.HasPrefix(c.Status, StatusCancelled)
}

// Reader resolves challenge records by id
type Reader interface {
	Get(ctx context.Context, id string) (*Challenge, error)
}

// Config is the client's environment surface
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv reads the CHALLENGES_ config surface
func ConfigFromEnv(cfg config.Conf) Config {
	c := cfg.Prefix("CHALLENGES_")
	return Config{
		BaseURL: c.MayString("URL", "http://localhost:4002/v5/challenges"),
		Timeout: c.MayDuration("TIMEOUT", 10*time.Second),
	}
}

// Client is the HTTP implementation of Reader
type Client struct {
	base   string
	client *http.Client
	log    logger.Logger
}

var _ Reader = (*Client)(nil)

// NewClient builds a Client. httpc may be nil
func NewClient(cfg Config, httpc *http.Client, log logger.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		base:   strings.TrimSuffix(cfg.BaseURL, "/"),
		client: httpc,
		log:    log.With().Str("component", "challenges").Logger(),
	}
}

// Get resolves one challenge record
func (c *Client) Get(ctx context.Context, id string) (*Challenge, error) {
	if strings.TrimSpace(id) == "" {
		return nil, perr.InvalidArgf("challenge id is required")
	}

	url := fmt.Sprintf("%s/%s", c.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "challenge request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "challenge service unavailable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, perr.NotFoundf("challenge %s not found", id)
	default:
		return nil, perr.Dependencyf("challenge service: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "challenge read")
	}
	var out Challenge
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "challenge decode")
	}
	return &out, nil
}
