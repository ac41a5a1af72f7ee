// Package fetch is the HTTP collaborator of the ingestion pipelines: a
// retrying GET that returns fully materialized JSON rows. The client is
// scoped to one pipeline run and passed in explicitly, so no global
// session state leaks across runs or tests.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	ing "github.com/wdm0006/ingot/pkg/ingot"
)

// Client wraps an http.Client with bounded retries.
type Client struct {
	hc      *http.Client
	retries uint64
}

// New builds a Client. A non-positive timeout defaults to 30s; negative
// retry counts clamp to zero.
func New(timeout time.Duration, retries int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{hc: &http.Client{Timeout: timeout}, retries: uint64(retries)}
}

// Get performs a GET with query parameters, retrying transport failures,
// 5xx and 429 with exponential backoff capped at 8s. 429/503 responses
// additionally honor Retry-After, capped at 16s. Any terminal failure is
// an *ingot.UpstreamError.
func (c *Client) Get(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ing.UpstreamError{URL: rawURL, Err: err}
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body []byte
	backoff := retry.WithMaxRetries(c.retries,
		retry.WithCappedDuration(8*time.Second, retry.NewExponential(time.Second)))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return &ing.UpstreamError{URL: u.String(), Err: err}
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return retry.RetryableError(&ing.UpstreamError{URL: u.String(), Err: err})
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusOK {
			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return retry.RetryableError(&ing.UpstreamError{URL: u.String(), Err: err})
			}
			return nil
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		uerr := &ing.UpstreamError{URL: u.String(), Status: resp.StatusCode}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
			if d := retryAfter(resp); d > 0 {
				sleepCtx(ctx, d)
			}
			return retry.RetryableError(uerr)
		case resp.StatusCode >= 500:
			return retry.RetryableError(uerr)
		default:
			return uerr
		}
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Rows fetches a JSON array of flat objects.
func (c *Client) Rows(ctx context.Context, rawURL string, params map[string]string) ([]map[string]any, error) {
	body, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &ing.UpstreamError{URL: rawURL, Err: err}
	}
	return rows, nil
}

// retryAfter reads a numeric Retry-After header, capped at 16s.
func retryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs <= 0 {
		return 0
	}
	if secs > 16 {
		secs = 16
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
