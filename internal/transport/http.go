// Package transport delivers request envelopes to the backend over HTTP.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const defaultMaxBodyBytes = 16 << 20

// ErrResponseTooLarge is returned when a reply exceeds Options.MaxBodyBytes.
var ErrResponseTooLarge = errors.New("response body too large")

// Options configures an HTTP transport.
type Options struct {
	Endpoint string
	// Timeout bounds a single round trip. Zero leaves it to ctx.
	Timeout time.Duration
	// RatePerSecond enables a token bucket when positive.
	RatePerSecond float64
	Burst         int
	// Token is sent as a bearer token when set.
	Token        string
	MaxBodyBytes int64
	Client       *http.Client
	Logger       *slog.Logger
}

// HTTP posts envelopes to a single endpoint. Replies are returned whatever
// their status code; deciding whether they carry data is left to the caller.
type HTTP struct {
	endpoint string
	timeout  time.Duration
	token    string
	maxBody  int64
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New validates opts and builds a transport.
func New(opts Options) (*HTTP, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("transport: endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("transport: endpoint %q must be an absolute http(s) URL", opts.Endpoint)
	}
	t := &HTTP{
		endpoint: u.String(),
		timeout:  opts.Timeout,
		token:    opts.Token,
		maxBody:  opts.MaxBodyBytes,
		client:   opts.Client,
		logger:   opts.Logger,
	}
	if t.maxBody <= 0 {
		t.maxBody = defaultMaxBodyBytes
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return t, nil
}

// Endpoint returns the URL requests are posted to.
func (t *HTTP) Endpoint() string { return t.endpoint }

// Do posts body as JSON and returns the reply body.
func (t *HTTP) Do(ctx context.Context, body []byte) (out []byte, retErr error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transport: rate limit: %w", err)
		}
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	out, err = io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("transport: read reply: %w", err)
	}
	if int64(len(out)) > t.maxBody {
		return nil, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, t.maxBody)
	}

	attrs := []any{
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(out),
		"elapsed", time.Since(start),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.logger.Warn("backend replied with non-success status", attrs...)
	} else {
		t.logger.Debug("backend replied", attrs...)
	}
	return out, nil
}
