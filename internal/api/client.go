// Package api holds one function per backend operation. Every function
// returns (value, error) where error is always an *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"coachline/internal/codec"
	"coachline/internal/metrics"
)

const (
	DefaultAPIVersion = "0.0.1"
	VersionHeader     = "X-Version"
)

// Client is the coaching platform REST client.
type Client struct {
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
	Metrics    metrics.Recorder
}

// New creates a client with a cookie jar for session credentials.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL:    baseURL,
		APIVersion: DefaultAPIVersion,
		Timeout:    10 * time.Second,
		HTTPClient: &http.Client{Timeout: 10 * time.Second, Jar: jar},
		Logger:     zerolog.Nop(),
	}
}

type operation struct {
	key  string
	desc string
	id   string
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// SessionCookies returns the cookies the backend set for the base URL.
func (c *Client) SessionCookies() []*http.Cookie {
	u, err := url.Parse(c.base())
	if err != nil || c.httpClient().Jar == nil {
		return nil
	}
	return c.httpClient().Jar.Cookies(u)
}

// RestoreSessionCookies seeds the jar, e.g. from persisted auth state.
func (c *Client) RestoreSessionCookies(cookies []*http.Cookie) error {
	u, err := url.Parse(c.base())
	if err != nil {
		return err
	}
	hc := c.httpClient()
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return err
		}
		hc.Jar = jar
	}
	hc.Jar.SetCookies(u, cookies)
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		jar, _ := cookiejar.New(nil)
		c.HTTPClient = &http.Client{Timeout: c.Timeout, Jar: jar}
	}
	return c.HTTPClient
}

func (c *Client) doJSON(ctx context.Context, op operation, method, endpoint string, body any) (json.RawMessage, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, transportError(op, err)
		}
	}
	return c.do(ctx, op, method, endpoint, "application/json", &buf)
}

func (c *Client) do(ctx context.Context, op operation, method, endpoint, contentType string, body io.Reader) (json.RawMessage, error) {
	target := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	version := c.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	req.Header.Set(VersionHeader, version)

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.observe(op, method, endpoint, 0, started, err)
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(op, method, endpoint, resp.StatusCode, started, err)
		return nil, transportError(op, err)
	}
	if resp.StatusCode >= 300 {
		apiErr := statusError(op, resp.StatusCode, strings.TrimSpace(string(data)))
		c.observe(op, method, endpoint, resp.StatusCode, started, apiErr)
		return nil, apiErr
	}
	c.observe(op, method, endpoint, resp.StatusCode, started, nil)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, validationError(op, fmt.Errorf("Invalid response envelope: %w", err))
	}
	return env.Data, nil
}

func (c *Client) observe(op operation, method, endpoint string, status int, started time.Time, err error) {
	d := time.Since(started)
	if c.Metrics != nil {
		c.Metrics.RecordRequest(op.key, status, d)
	}
	evt := c.Logger.Debug()
	if err != nil {
		evt = c.Logger.Error().Err(err)
	}
	evt.Str("op", op.key).
		Str("method", method).
		Str("path", endpoint).
		Int("status", status).
		Dur("duration", d).
		Msg("api call")
}

// decode runs the codec and converts its failures into *Error.
func decode[T any](c *Client, op operation, data json.RawMessage, parse func([]byte) (T, error)) (T, error) {
	v, err := parse(data)
	if err != nil {
		var ve *codec.ValidationError
		if errors.As(err, &ve) && c.Metrics != nil {
			c.Metrics.RecordValidationFailure(ve.Entity)
		}
		c.Logger.Error().Err(err).Str("op", op.key).Msg("invalid payload")
		var zero T
		return zero, validationError(op, err)
	}
	return v, nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

func pathID(id string) string { return url.PathEscape(id) }
