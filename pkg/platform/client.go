package platform

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type HTTPClient struct {
	Client  *http.Client
	Retries int
	Timeout time.Duration
	Logger  zerolog.Logger
	// Backoff is the delay before the first retry; it doubles each attempt.
	Backoff time.Duration
}

func NewHTTPClient(retries int, timeout time.Duration, logger zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		Client: &http.Client{
			Timeout: timeout,
		},
		Retries: retries,
		Timeout: timeout,
		Logger:  logger,
		Backoff: 200 * time.Millisecond,
	}
}

// PostJSON posts body to url, retrying transport errors and 5xx responses
// with exponential backoff. Every attempt carries the same X-Request-ID.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	requestID := uuid.NewString()

	for i := 0; i <= c.Retries; i++ {
		req, rErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if rErr != nil {
			return nil, rErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", requestID)

		resp, err = c.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if i < c.Retries {
			status := 0
			if resp != nil {
				status = resp.StatusCode
				resp.Body.Close()
			}
			c.Logger.Warn().
				Str("url", url).
				Str("request_id", requestID).
				Int("attempt", i+1).
				Int("status", status).
				Err(err).
				Msg("HTTP request failed, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<i) * c.Backoff):
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d retries: %w", c.Retries, err)
	}
	return resp, nil // last response even if 5xx
}
