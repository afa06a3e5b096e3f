// ABOUTME: Typed HTTP client for the pomodoro API with exponential backoff retry.
// ABOUTME: Satisfies timer.Recorder so engines can log cycles to a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/harperreed/pomodoro/internal/api"
	"github.com/harperreed/pomodoro/internal/logging"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/stats"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/harperreed/pomodoro/internal/timer"
)

const (
	// DefaultMaxAttempts counts the first try.
	DefaultMaxAttempts = 5
	// DefaultBaseDelay doubles after each failed attempt: 1s, 2s, 4s, 8s.
	DefaultBaseDelay = time.Second
	// DefaultRecordTimeout bounds RecordCycle, which has no caller context.
	DefaultRecordTimeout = 45 * time.Second
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses back onto storage sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return storage.ErrNotFound
	case http.StatusServiceUnavailable:
		return storage.ErrReadOnly
	}
	return nil
}

// retryable reports whether a failed attempt should be tried again.
func (e *APIError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type Client struct {
	baseURL     string
	http        *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *log.Logger
}

var _ timer.Recorder = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetry sets the attempt budget and the first retry delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.baseDelay = baseDelay
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the server at baseURL, e.g. http://localhost:3000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: 10 * time.Second},
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.baseDelay << 4
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx)
}

// do sends a request and decodes a JSON response into out, retrying
// network errors and 5xx responses. 4xx responses fail immediately.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	raw, err := c.doRaw(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, in any) ([]byte, error) {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	attempt := 0
	var body []byte
	op := func() error {
		attempt++
		var err error
		body, err = c.once(ctx, method, path, payload)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("request failed, retrying",
			"method", method, "path", path, "attempt", attempt, "max", c.maxAttempts, "wait", wait, "err", err)
	}

	if err := backoff.RetryNotify(op, c.backoff(ctx), notify); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return body, nil
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e api.ErrorResponse
		if json.Unmarshal(body, &e) == nil {
			apiErr.Message = e.Error
		}
		return nil, apiErr
	}
	return body, nil
}

// Health returns nil when the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRaw(ctx, http.MethodGet, "/health", nil)
	return err
}

// Record posts a cycle and returns the stored copy.
func (c *Client) Record(ctx context.Context, req api.RecordRequest) (*api.RecordResponse, error) {
	var resp api.RecordResponse
	if err := c.do(ctx, http.MethodPost, "/pomodoro/cycle", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordCycle records c remotely and copies the server-assigned ID back.
func (c *Client) RecordCycle(cycle *models.Cycle) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultRecordTimeout)
	defer cancel()

	ts := cycle.RecordedAt
	req := api.RecordRequest{
		DurationMinutes: cycle.DurationMinutes,
		SessionType:     string(cycle.SessionType),
		Timestamp:       &ts,
	}
	if cycle.Notes != nil {
		req.Notes = *cycle.Notes
	}
	resp, err := c.Record(ctx, req)
	if err != nil {
		return err
	}
	if resp.Cycle != nil {
		cycle.ID = resp.Cycle.ID
		cycle.UID = resp.Cycle.UID
	}
	return nil
}

// Stats returns the daily aggregates, newest first.
func (c *Client) Stats(ctx context.Context) ([]models.DailyStat, error) {
	var daily []models.DailyStat
	if err := c.do(ctx, http.MethodGet, "/pomodoro/stats", nil, &daily); err != nil {
		return nil, err
	}
	return daily, nil
}

// Summary returns the dashboard summary. A zero goal uses the server default.
func (c *Client) Summary(ctx context.Context, goalHours float64) (*stats.Summary, error) {
	path := "/pomodoro/summary"
	if goalHours > 0 {
		path += "?goal=" + strconv.FormatFloat(goalHours, 'f', -1, 64)
	}
	var s stats.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListCycles fetches cycles matching filter, newest first.
func (c *Client) ListCycles(ctx context.Context, filter *storage.CycleFilter) ([]*models.Cycle, error) {
	q := url.Values{}
	if filter != nil {
		if filter.SessionType != nil {
			q.Set("type", string(*filter.SessionType))
		}
		if filter.Since != nil {
			q.Set("since", filter.Since.Format(time.RFC3339))
		}
		if filter.Limit > 0 {
			q.Set("limit", strconv.Itoa(filter.Limit))
		}
	}
	path := "/pomodoro/cycles"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var cycles []*models.Cycle
	if err := c.do(ctx, http.MethodGet, path, nil, &cycles); err != nil {
		return nil, err
	}
	return cycles, nil
}

func (c *Client) DeleteCycle(ctx context.Context, idOrPrefix string) error {
	return c.do(ctx, http.MethodDelete, "/pomodoro/cycles/"+url.PathEscape(idOrPrefix), nil, nil)
}

// Clear empties the remote log and returns how many cycles were removed.
func (c *Client) Clear(ctx context.Context) (int, error) {
	var resp api.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, "/pomodoro/clear", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// Export downloads the log in the given format.
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, "/pomodoro/export?format="+url.QueryEscape(format), nil)
}

// Timer returns the server's timer snapshot.
func (c *Client) Timer(ctx context.Context) (*timer.Snapshot, error) {
	var snap timer.Snapshot
	if err := c.do(ctx, http.MethodGet, "/pomodoro/timer", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// TimerAction relays a companion action such as toggle or skipBreak.
func (c *Client) TimerAction(ctx context.Context, action string) (*timer.Snapshot, error) {
	var snap timer.Snapshot
	if err := c.do(ctx, http.MethodPost, "/pomodoro/timer/"+url.PathEscape(action), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) SetWorkDuration(ctx context.Context, minutes int) (*timer.Snapshot, error) {
	var snap timer.Snapshot
	if err := c.do(ctx, http.MethodPut, "/pomodoro/timer/duration", api.DurationRequest{Minutes: minutes}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) AlwaysOnTop(ctx context.Context) (bool, error) {
	var resp api.AlwaysOnTopResponse
	err := c.do(ctx, http.MethodGet, "/pomodoro/pip/always-on-top", nil, &resp)
	return resp.Enabled, err
}

func (c *Client) ToggleAlwaysOnTop(ctx context.Context) (bool, error) {
	var resp api.AlwaysOnTopResponse
	err := c.do(ctx, http.MethodPost, "/pomodoro/pip/always-on-top/toggle", nil, &resp)
	return resp.Enabled, err
}

func (c *Client) SetAlwaysOnTop(ctx context.Context, enabled bool) (bool, error) {
	var resp api.AlwaysOnTopResponse
	err := c.do(ctx, http.MethodPut, "/pomodoro/pip/always-on-top", api.AlwaysOnTopResponse{Enabled: enabled}, &resp)
	return resp.Enabled, err
}
