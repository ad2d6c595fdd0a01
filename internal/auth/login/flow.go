// Package login runs one interactive authorization-code login: an ephemeral
// local callback listener, a consent URL for the browser, state validation on
// the redirect, and the code exchange that produces a new account record.
package login

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/firelens/firelens/internal/auth"
	"github.com/firelens/firelens/internal/auth/oauth"
)

// DefaultCallbackPort is tried first for the callback listener; when taken,
// the OS assigns a free ephemeral port instead.
const DefaultCallbackPort = 9005

// Exchanger is the slice of the oauth client a flow needs.
type Exchanger interface {
	AuthCodeURL(state, redirectURI string, origin auth.Origin) string
	ExchangeAuthCode(ctx context.Context, code, redirectURI string, origin auth.Origin) (auth.TokenSet, error)
}

// StateMismatchError is a callback whose state did not match the pending
// nonce, or that carried no authorization code. The attempt fails but the
// listener is still torn down.
type StateMismatchError struct {
	Reason string
}

func (e *StateMismatchError) Error() string {
	return "login callback rejected: " + e.Reason
}

type result struct {
	record auth.Record
	err    error
}

// Flow is a single login attempt. Each attempt owns its own nonce and
// listener, so any number of flows may run concurrently.
type Flow struct {
	exchanger Exchanger
	nonce     string
	port      int
	server    *http.Server

	result    chan result
	closeOnce sync.Once
}

// Start binds the callback listener and begins serving. It does not open a
// browser; callers send the user to AuthURL and then Wait. The attempt has
// no built-in timeout: it stays pending until a callback arrives or the
// caller cancels.
func Start(exchanger Exchanger, preferredPort int) (*Flow, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}

	if preferredPort == 0 {
		preferredPort = DefaultCallbackPort
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", preferredPort))
	if err != nil {
		listener, err = net.Listen("tcp", "localhost:0")
		if err != nil {
			return nil, fmt.Errorf("binding callback listener: %w", err)
		}
		log.Printf("[Login] port %d in use, using ephemeral port", preferredPort)
	}

	f := &Flow{
		exchanger: exchanger,
		nonce:     nonce,
		port:      listener.Addr().(*net.TCPAddr).Port,
		result:    make(chan result, 1),
	}

	router := chi.NewRouter()
	router.Get("/", f.handleCallback)
	f.server = &http.Server{Handler: router}

	go func() {
		if err := f.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[Login] callback server error: %v", err)
		}
	}()

	log.Printf("[Login] callback listener on port %d", f.port)
	return f, nil
}

// AuthURL is the provider consent page the user's browser must visit.
func (f *Flow) AuthURL() string {
	return f.exchanger.AuthCodeURL(f.nonce, f.redirectURI(), auth.OriginInteractive)
}

// Port is the bound callback port.
func (f *Flow) Port() int {
	return f.port
}

// Wait blocks until the attempt finishes or ctx is cancelled. Cancellation
// closes the listener before returning.
func (f *Flow) Wait(ctx context.Context) (auth.Record, error) {
	select {
	case res := <-f.result:
		return res.record, res.err
	case <-ctx.Done():
		f.Close()
		return auth.Record{}, ctx.Err()
	}
}

// Close tears the listener down. Safe to call any number of times.
func (f *Flow) Close() {
	f.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := f.server.Shutdown(ctx); err != nil {
			log.Printf("[Login] error shutting down callback server: %v", err)
		}
	})
}

func (f *Flow) redirectURI() string {
	return fmt.Sprintf("http://localhost:%d", f.port)
}

// handleCallback accepts exactly one meaningful request: state must equal
// the issued nonce and a code must be present. Anything else fails the
// attempt with a 400 page; either way the listener is closed afterwards.
func (f *Flow) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := query.Get("state")
	code := query.Get("code")

	switch {
	case state != f.nonce:
		f.fail(w, &StateMismatchError{Reason: "state does not match the pending login"})
		return
	case code == "":
		f.fail(w, &StateMismatchError{Reason: "callback carries no authorization code"})
		return
	}

	tokens, err := f.exchanger.ExchangeAuthCode(r.Context(), code, f.redirectURI(), auth.OriginInteractive)
	if err != nil {
		f.fail(w, fmt.Errorf("exchanging authorization code: %w", err))
		return
	}

	identity, err := oauth.DecodeIDToken(tokens.IDToken)
	if err != nil {
		f.fail(w, fmt.Errorf("decoding identity token: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, successPage, identity.Email)

	f.finish(result{record: auth.Record{
		Identity: identity,
		Tokens:   tokens,
		Origin:   auth.OriginInteractive,
	}})
}

func (f *Flow) fail(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprint(w, failurePage)
	f.finish(result{err: err})
}

// finish resolves the attempt once; the first callback wins. The listener is
// closed in the background so the response above still reaches the browser.
func (f *Flow) finish(res result) {
	select {
	case f.result <- res:
	default:
	}
	go f.Close()
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating login nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
