// Package upstream is the HTTP collaborator for the fuel API and the GPS vendor:
// alert lookup, fuel-log lookup, GPS fuel graph lookup and decision submission.
// Requests are issued once; there is no retry.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
)

const (
	alertPath    = "/api/v1/ambulance/fuel/alert/%d"
	fuelLogPath  = "/api/v1/ambulance/fuel/record/%d"
	confirmPath  = "/api/v1/ambulance/fuel/record/dashboard/confirm"
	gpsGraphPath = "/trackingDashboard/getAllfueldatagraph"

	// DefaultGPSUserID and DefaultGPSTypeFT are the fixed query parameters the GPS
	// vendor expects on fuel graph requests.
	DefaultGPSUserID = "833193"
	DefaultGPSTypeFT = "1"

	windowLayout = "2006-01-02 15:04"
	maxErrorBody = 512

	defaultTimeout = 15 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A nil client is ignored. The
// custom client keeps its own timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
			c.customHTTP = true
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithGPSUserID overrides the userid parameter sent to the GPS vendor.
func WithGPSUserID(id string) Option {
	return func(c *Client) {
		c.gpsUserID = id
	}
}

// WithGPSTypeFT overrides the TypeFT parameter sent to the GPS vendor.
func WithGPSTypeFT(v string) Option {
	return func(c *Client) {
		c.gpsTypeFT = v
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// Client talks to the fuel API and the GPS vendor. It is safe for concurrent use.
type Client struct {
	fuelBaseURL string
	gpsBaseURL  string
	gpsUserID   string
	gpsTypeFT   string
	http        *http.Client
	customHTTP  bool
	timeout     time.Duration
	log         log.FieldLogger
}

// New creates a Client for the given fuel API and GPS vendor base URLs.
func New(fuelBaseURL, gpsBaseURL string, opts ...Option) *Client {
	c := &Client{
		fuelBaseURL: fuelBaseURL,
		gpsBaseURL:  gpsBaseURL,
		gpsUserID:   DefaultGPSUserID,
		gpsTypeFT:   DefaultGPSTypeFT,
		timeout:     defaultTimeout,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.customHTTP && c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	return c
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, op, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "upstream: %s: create request", op)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(op, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "upstream: %s: decode response", op)
	}
	return nil
}

// postJSON sends payload as JSON and returns the 2xx response body.
func (c *Client) postJSON(ctx context.Context, op, reqURL string, payload interface{}, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "upstream: %s: encode body", op)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "upstream: %s: create request", op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "upstream: %s: request failed", op)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "upstream: %s: read response body", op)
	}

	c.log.WithFields(log.Fields{
		"op":          op,
		"request_id":  requestID,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("upstream call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("upstream: %s: unexpected status %d: %s", op, resp.StatusCode, truncate(body))
	}
	return body, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
