package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientConfig tunes the shared HTTP client.
type ClientConfig struct {
	UserAgent         string
	Timeout           time.Duration
	Retries           int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
}

// Client wraps http.Client with the behavior every upstream here needs:
// retry with exponential backoff on transient failures, and a politeness
// rate limit so successive requests to the same source are spaced out.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	retries   int
	backoff   time.Duration
	userAgent string
	log       logrus.FieldLogger
}

func NewClient(cfg ClientConfig, log logrus.FieldLogger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 2
	}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retries:   cfg.Retries,
		backoff:   cfg.RetryBackoff,
		userAgent: cfg.UserAgent,
		log:       log,
	}
}

// Do performs the request, retrying network errors, 429s and 5xx responses
// with exponential backoff. The caller owns the response body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			resp.Body.Close()
			lastErr = fmt.Errorf("http %d from %s", resp.StatusCode, req.URL.Host)
		}

		c.log.WithError(lastErr).WithFields(logrus.Fields{
			"url":     req.URL.String(),
			"attempt": attempt + 1,
		}).Warn("request failed")

		if attempt < c.retries-1 {
			select {
			case <-time.After(c.backoff * (1 << attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("all %d attempts failed for %s: %w", c.retries, req.URL.String(), lastErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// GetJSON fetches rawURL with the given query parameters and decodes the
// JSON response into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d from %s", resp.StatusCode, rawURL)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// PostJSON sends body as JSON and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d from %s", resp.StatusCode, rawURL)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Download fetches rawURL into a temp file and returns its path. The
// caller removes the file.
func (c *Client) Download(ctx context.Context, rawURL, pattern string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d from %s", resp.StatusCode, rawURL)
	}

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}

	size, err := io.Copy(tmp, resp.Body)
	tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	c.log.WithFields(logrus.Fields{
		"url":   rawURL,
		"bytes": size,
		"path":  tmp.Name(),
	}).Debug("downloaded")

	return tmp.Name(), nil
}
