package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Response bodies are capped; every upstream we query returns payloads well
// under this.
const maxBodyBytes = 512 * 1024

// retryBackoff is the linear backoff unit between retries of a throttled
// request.
const retryBackoff = 500 * time.Millisecond

// Fetch performs a GET against url with the given headers, retrying on
// throttling responses (429 and 503) up to maxRetries additional attempts
// with linear backoff. A 404 yields *ErrNotFound; any other non-2xx status
// and retry exhaustion yield *ErrUnavailable. Network errors are returned
// as-is and not retried.
func Fetch(ctx context.Context, client *http.Client, name Name, url string, header http.Header, maxRetries int) ([]byte, error) {
	var retryAfter time.Duration

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, retryBackoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", url, err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			continue

		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, &ErrNotFound{Provider: name, ID: url}

		case resp.StatusCode < 200 || resp.StatusCode > 299:
			_ = resp.Body.Close()
			return nil, &ErrUnavailable{
				Provider: name,
				Cause:    fmt.Errorf("unexpected status %d", resp.StatusCode),
			}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		return body, nil
	}

	return nil, &ErrUnavailable{
		Provider:   name,
		Cause:      fmt.Errorf("rate limited after %d attempts", maxRetries+1),
		RetryAfter: retryAfter,
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
