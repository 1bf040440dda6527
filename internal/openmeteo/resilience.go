package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// backoffConfig controls exponential retry backoff for API calls.
type backoffConfig struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// doRequest executes the request built by buildRequest with retries,
// exponential backoff, and a circuit breaker. 429 and 5xx responses count as
// failures and are retried; other non-2xx statuses fail immediately with the
// status in the error.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	backoff backoffConfig,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})

		if err == nil {
			return result.(*http.Response), nil
		}

		// An open circuit means recent calls kept failing; don't pile on.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if errors.Is(err, errUnexpected) {
			return nil, err
		}

		lastErr = err
		if attempt >= backoff.maxRetries {
			return nil, lastErr
		}

		delay := backoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if backoff.maxInterval > 0 && delay > backoff.maxInterval {
			delay = backoff.maxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}
