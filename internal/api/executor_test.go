package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

type staticTokens struct {
	mu    sync.Mutex
	seq   []string
	calls int
}

func (s *staticTokens) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.seq) == 0 {
		return "at-static", nil
	}
	token := s.seq[0]
	if len(s.seq) > 1 {
		s.seq = s.seq[1:]
	}
	return token, nil
}

// newTestExecutor swaps the real sleeper for a recorder.
func newTestExecutor(tokens TokenSource) (*Executor, *[]time.Duration) {
	exec := NewExecutor(tokens)
	var sleeps []time.Duration
	exec.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return exec, &sleeps
}

func TestDo_RetriesStatusesInRetrySet(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	exec, sleeps := newTestExecutor(&staticTokens{})
	resp, err := exec.Do(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     srv.URL,
		RetryOn: []int{http.StatusServiceUnavailable},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 after retries, got %d", resp.StatusCode)
	}
	if hits != 3 {
		t.Errorf("expected 3 attempts (two retries), got %d", hits)
	}
	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("expected sleeps %v, got %v", want, *sleeps)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, (*sleeps)[i])
		}
	}
}

func TestDo_StatusOutsideRetrySetReturnsImmediately(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	exec, sleeps := newTestExecutor(&staticTokens{})
	resp, err := exec.Do(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     srv.URL,
		RetryOn: []int{http.StatusServiceUnavailable},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected the 500 returned as-is, got %d", resp.StatusCode)
	}
	if hits != 1 {
		t.Errorf("expected a single attempt, got %d", hits)
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no backoff waits, got %v", *sleeps)
	}
}

func TestDo_FetchesTokenBeforeEveryAttempt(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		if len(auths) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := &staticTokens{seq: []string{"at-1", "at-2", "at-3"}}
	exec, _ := newTestExecutor(tokens)
	resp, err := exec.Do(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     srv.URL,
		RetryOn: []int{http.StatusServiceUnavailable},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	want := []string{"Bearer at-1", "Bearer at-2", "Bearer at-3"}
	if len(auths) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(auths))
	}
	for i, header := range want {
		if auths[i] != header {
			t.Errorf("attempt %d: expected %q, got %q", i, header, auths[i])
		}
	}
}

func TestDo_SetsHeadersBodyAndQuery(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	exec, _ := newTestExecutor(&staticTokens{})
	resp, err := exec.Do(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     srv.URL + "/v1beta1/projects",
		Body:    map[string]string{"displayName": "demo"},
		Query:   url.Values{"pageSize": {"10"}},
		Headers: http.Header{"X-Goog-User-Project": {"demo"}},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got.Header.Get("Authorization") != "Bearer at-static" {
		t.Errorf("unexpected Authorization header %q", got.Header.Get("Authorization"))
	}
	if got.Header.Get("User-Agent") == "" || got.Header.Get("X-Client-Version") == "" {
		t.Error("expected client identification headers")
	}
	if got.Header.Get("Content-Type") != "application/json" {
		t.Errorf("expected a JSON content type, got %q", got.Header.Get("Content-Type"))
	}
	if got.Header.Get("X-Goog-User-Project") != "demo" {
		t.Error("expected extra headers to pass through")
	}
	if got.URL.Query().Get("pageSize") != "10" {
		t.Errorf("expected the query string to be encoded, got %q", got.URL.RawQuery)
	}
	if string(body) != `{"displayName":"demo"}` {
		t.Errorf("unexpected body %q", string(body))
	}
}

func TestDo_TransportErrorsPropagateWithoutRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	exec, sleeps := newTestExecutor(&staticTokens{})
	_, err := exec.Do(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     srv.URL,
		RetryOn: []int{http.StatusServiceUnavailable},
	})
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if len(*sleeps) != 0 {
		t.Errorf("transport errors must not be retried, got waits %v", *sleeps)
	}
}

func TestBackoff_Next(t *testing.T) {
	b := DefaultBackoff()
	var got []time.Duration
	wait := time.Duration(0)
	for i := 0; i < 6; i++ {
		wait = b.Next(wait)
		got = append(got, wait)
	}

	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		5 * time.Second,
		5 * time.Second,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
