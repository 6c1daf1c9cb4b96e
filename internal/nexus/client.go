// Package nexus is the REST client for the case-management backend.
package nexus

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/apperr"
)

// Options client settings
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

// Client case-management backend client
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// APIError error body returned by the backend
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewClient creates a backend client
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/hal+json, application/json").
		SetError(&APIError{})

	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// check maps a resty result onto the error kinds. Validation and conflict
// responses are business rejections; everything else is infrastructure.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Error("Nexus API call failed",
			zap.String("op", op),
			zap.Error(err),
		)
		return apperr.Infra(op, fmt.Errorf("failed to call Nexus API: %w", err))
	}
	if resp.IsSuccess() {
		return nil
	}

	msg := resp.Status()
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Message != "" {
		msg = apiErr.Message
	}

	c.logger.Warn("Nexus API returned error",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode()),
		zap.String("msg", msg),
	)

	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return apperr.Domainf(op, "Nexus rejected request: %s (status: %d)", msg, resp.StatusCode())
	default:
		return apperr.Infra(op, fmt.Errorf("Nexus API error: %s (status: %d)", msg, resp.StatusCode()))
	}
}

func notFound(resp *resty.Response) bool {
	return resp != nil && resp.StatusCode() == http.StatusNotFound
}
