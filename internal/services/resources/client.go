// Package resources is the read port onto the external resource
// service. Transport failures surface as dependency errors, never as
// an authorization outcome; only an explicit remote 404 becomes NotFound
package resources

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

// Resource is the subset of the remote record this service needs
type Resource struct {
	ID          string `json:"id"`
	MemberID    string `json:"memberId"`
	ChallengeID string `json:"challengeId"`
	RoleID      string `json:"roleId"`
}

// Reader resolves resource records by id
type Reader interface {
	Get(ctx context.Context, id string) (*Resource, error)
}

// Config is the client's environment surface
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv reads the RESOURCES_ config surface
func ConfigFromEnv(cfg config.Conf) Config {
	c := cfg.Prefix("RESOURCES_")
	return Config{
		BaseURL: c.MayString("URL", "http://localhost:4001/v5/resources"),
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
		log:    log.With().Str("component", "resources").Logger(),
	}
}

// Get resolves one resource record
func (c *Client) Get(ctx context.Context, id string) (*Resource, error) {
	if strings.TrimSpace(id) == "" {
		return nil, perr.InvalidArgf("resource id is required")
	}

	url := fmt.Sprintf("%s/%s", c.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "resource request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "resource service unavailable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, perr.NotFoundf("resource %s not found", id)
	default:
		return nil, perr.Dependencyf("resource service: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "resource read")
	}
	var out Resource
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDependency, "resource decode")
	}
	return &out, nil
}
