// Package api is the generic authenticated transport for Firebase REST
// resources: bearer-token injection, retry with exponential backoff, and
// long-running operation polling. Resource-specific clients build on it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/firelens/firelens/internal/version"
)

// TokenSource supplies a valid bearer token. It is asked immediately before
// every attempt, including retries, since a retry loop may outlive a token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Request describes one authenticated call. RetryOn lists the statuses the
// executor retries with backoff; every other status is returned to the
// caller as-is.
type Request struct {
	Method  string
	URL     string
	Body    any
	Query   url.Values
	Headers http.Header
	RetryOn []int
}

// Doer is the executor contract resource clients depend on.
type Doer interface {
	Do(ctx context.Context, req Request) (*http.Response, error)
}

// Executor performs authenticated requests for one session.
type Executor struct {
	tokens     TokenSource
	httpClient *http.Client
	backoff    Backoff

	// sleep is swapped in tests to observe the wait sequence.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor returns an Executor drawing bearer tokens from tokens.
func NewExecutor(tokens TokenSource) *Executor {
	return &Executor{
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		backoff:    DefaultBackoff(),
		sleep:      sleepContext,
	}
}

// Do sends the request, retrying statuses in req.RetryOn with the shared
// backoff until a non-retryable status arrives or ctx is cancelled.
// Transport failures are never retried here; they propagate immediately.
func (e *Executor) Do(ctx context.Context, req Request) (*http.Response, error) {
	var wait time.Duration
	for {
		if wait > 0 {
			if err := e.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		resp, err := e.doOnce(ctx, req)
		if err != nil {
			return nil, err
		}
		if !statusIn(resp.StatusCode, req.RetryOn) {
			return resp, nil
		}

		resp.Body.Close()
		wait = e.backoff.Next(wait)
		log.Printf("[API] %s %s returned %d, retrying in %s", req.Method, req.URL, resp.StatusCode, wait)
	}
}

func (e *Executor) doOnce(ctx context.Context, req Request) (*http.Response, error) {
	token, err := e.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining access token: %w", err)
	}

	target := req.URL
	if len(req.Query) > 0 {
		target = target + "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("User-Agent", "Firelens/"+version.Version)
	httpReq.Header.Set("X-Client-Version", "Firelens/"+version.Version)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	return e.httpClient.Do(httpReq)
}

func statusIn(status int, set []int) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
