// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rdm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/internal/httputil"
	"github.com/pdiddy/lutetab/pkg/types"
)

// TokenKey is the secrets key holding the repository API token.
const TokenKey = "rdm-api-token"

// maxErrorBody bounds the response excerpt kept in an APIError.
const maxErrorBody = 512

// ErrNoToken is returned when no API token is available.
var ErrNoToken = errors.New("no repository API token configured")

// APIError is a non-2xx response from the repository.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("repository returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("repository returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Draft is the repository's answer to a created draft.
type Draft struct {
	ID    string `json:"id"`
	Links struct {
		Self     string `json:"self"`
		SelfHTML string `json:"self_html"`
	} `json:"links"`
}

// Client talks to an InvenioRDM records API.
type Client struct {
	HTTP       *http.Client
	BaseURL    string
	Token      string
	UserAgent  string
	MaxRetries int
	log        *zap.Logger
}

// NewClient returns a client for cfg.APIURL authenticated with token.
func NewClient(cfg types.UploadConfig, token string, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	if cfg.APIURL == "" {
		return nil, errors.New("upload.api_url is not set")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimRight(cfg.APIURL, "/"),
		Token:      token,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		log:        log,
	}, nil
}

// CreateDraft posts rec to <BaseURL>/records. Throttled responses are
// retried; any other non-2xx status yields an *APIError.
func (c *Client) CreateDraft(ctx context.Context, rec Record) (Draft, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return Draft{}, fmt.Errorf("encoding record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/records", bytes.NewReader(body))
	if err != nil {
		return Draft{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries, c.log)
	if err != nil {
		return Draft{}, fmt.Errorf("repository request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Draft{}, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	var d Draft
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Draft{}, fmt.Errorf("parsing repository response: %w", err)
	}
	return d, nil
}
