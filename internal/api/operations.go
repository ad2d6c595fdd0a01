package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OperationStatus is the error embedded in a failed operation.
type OperationStatus struct {
	Code    int32             `json:"code"`
	Message string            `json:"message"`
	Details []json.RawMessage `json:"details,omitempty"`
}

// Operation is a server-side asynchronous job. A terminal operation has
// Done true and exactly one of Error or Response populated.
type Operation struct {
	Name     string           `json:"name"`
	Done     bool             `json:"done"`
	Metadata json.RawMessage  `json:"metadata,omitempty"`
	Error    *OperationStatus `json:"error,omitempty"`
	Response json.RawMessage  `json:"response,omitempty"`
}

// Poller waits on long-running operations by fetching the operation resource
// on the shared backoff curve.
type Poller struct {
	exec    Doer
	baseURL string
	backoff Backoff

	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller returns a Poller issuing its GETs through exec.
func NewPoller(exec Doer) *Poller {
	return &Poller{
		exec:    exec,
		baseURL: BaseURL,
		backoff: DefaultBackoff(),
		sleep:   sleepContext,
	}
}

// WaitOperation polls the named operation until it reports done, then
// returns it. A terminal operation carrying an embedded error is still a
// successful poll; the error belongs to the operation, not to us. Polling
// has no attempt cap or overall timeout: provisioning jobs run unbounded,
// so an upper bound is the caller's context to impose. Any non-200 while
// fetching the status is fatal for this poll.
func (p *Poller) WaitOperation(ctx context.Context, name string) (*Operation, error) {
	var wait time.Duration
	for {
		if wait > 0 {
			if err := p.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		op, err := p.fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		if op.Done {
			return op, nil
		}

		wait = p.backoff.Next(wait)
	}
}

func (p *Poller) fetch(ctx context.Context, name string) (*Operation, error) {
	resp, err := p.exec.Do(ctx, Request{
		Method: http.MethodGet,
		URL:    p.baseURL + "/v1beta1/" + strings.TrimPrefix(name, "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching operation %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("operation %s returned status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var op Operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("decoding operation %s: %w", name, err)
	}
	return &op, nil
}
