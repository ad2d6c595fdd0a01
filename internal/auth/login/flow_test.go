package login

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/firelens/firelens/internal/auth"
)

type fakeExchanger struct {
	mu     sync.Mutex
	tokens auth.TokenSet
	err    error
	calls  int
}

func (f *fakeExchanger) AuthCodeURL(state, redirectURI string, origin auth.Origin) string {
	return "https://auth.example.com/consent?state=" + state + "&redirect_uri=" + redirectURI
}

func (f *fakeExchanger) ExchangeAuthCode(ctx context.Context, code, redirectURI string, origin auth.Origin) (auth.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.tokens, f.err
}

func fakeIDToken(t *testing.T, email string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"iss":   "https://accounts.google.com",
		"email": email,
		"sub":   "sub-1",
	})
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return "h." + base64.RawURLEncoding.EncodeToString(payload) + ".s"
}

func startTestFlow(t *testing.T, exchanger Exchanger) *Flow {
	t.Helper()
	flow, err := Start(exchanger, 0)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(flow.Close)
	return flow
}

func callbackURL(f *Flow, query string) string {
	return fmt.Sprintf("http://localhost:%d/?%s", f.Port(), query)
}

// waitListenerClosed polls until the callback port stops answering.
func waitListenerClosed(t *testing.T, f *Flow) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(callbackURL(f, ""))
		if err != nil {
			return
		}
		resp.Body.Close()
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("listener still answering after the attempt finished")
}

func TestFlow_SucceedsOnMatchingCallback(t *testing.T) {
	exchanger := &fakeExchanger{
		tokens: auth.TokenSet{
			AccessToken:  "at-1",
			RefreshToken: "rt-1",
			IDToken:      fakeIDToken(t, "dev@example.com"),
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}
	flow := startTestFlow(t, exchanger)

	resp, err := http.Get(callbackURL(flow, "state="+flow.nonce+"&code=code-1"))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from the success page, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rec, err := flow.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if rec.Identity.Email != "dev@example.com" {
		t.Errorf("expected identity from the ID token, got %q", rec.Identity.Email)
	}
	if rec.Origin != auth.OriginInteractive {
		t.Errorf("expected interactive origin, got %q", rec.Origin)
	}
	if exchanger.calls != 1 {
		t.Errorf("expected exactly one exchange, got %d", exchanger.calls)
	}
	waitListenerClosed(t, flow)
}

func TestFlow_RejectsStateMismatch(t *testing.T) {
	exchanger := &fakeExchanger{}
	flow := startTestFlow(t, exchanger)

	resp, err := http.Get(callbackURL(flow, "state=wrong&code=code-1"))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 from the failure page, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = flow.Wait(ctx)

	var mismatch *StateMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *StateMismatchError, got %v", err)
	}
	if exchanger.calls != 0 {
		t.Errorf("a mismatched callback must never reach the exchanger, got %d calls", exchanger.calls)
	}
	waitListenerClosed(t, flow)
}

func TestFlow_RejectsMissingCode(t *testing.T) {
	flow := startTestFlow(t, &fakeExchanger{})

	resp, err := http.Get(callbackURL(flow, "state="+flow.nonce))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = flow.Wait(ctx)

	var mismatch *StateMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *StateMismatchError, got %v", err)
	}
}

func TestFlow_ExchangeFailureFailsAttempt(t *testing.T) {
	exchanger := &fakeExchanger{err: errors.New("code rejected")}
	flow := startTestFlow(t, exchanger)

	resp, err := http.Get(callbackURL(flow, "state="+flow.nonce+"&code=bad"))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := flow.Wait(ctx); err == nil {
		t.Fatal("expected the exchange failure to surface")
	}
}

func TestFlow_WaitHonorsCancellation(t *testing.T) {
	flow := startTestFlow(t, &fakeExchanger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := flow.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	waitListenerClosed(t, flow)
}

func TestFlow_CloseIsIdempotent(t *testing.T) {
	flow := startTestFlow(t, &fakeExchanger{})
	flow.Close()
	flow.Close()
}

func TestFlow_ConcurrentAttemptsAreIndependent(t *testing.T) {
	first := startTestFlow(t, &fakeExchanger{
		tokens: auth.TokenSet{IDToken: fakeIDToken(t, "one@example.com")},
	})
	second := startTestFlow(t, &fakeExchanger{
		tokens: auth.TokenSet{IDToken: fakeIDToken(t, "two@example.com")},
	})

	if first.Port() == second.Port() {
		t.Fatalf("concurrent flows share port %d", first.Port())
	}
	if first.nonce == second.nonce {
		t.Fatal("concurrent flows share a nonce")
	}

	resp, err := http.Get(callbackURL(second, "state="+second.nonce+"&code=c2"))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rec, err := second.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if rec.Identity.Email != "two@example.com" {
		t.Errorf("expected two@example.com, got %q", rec.Identity.Email)
	}
}
