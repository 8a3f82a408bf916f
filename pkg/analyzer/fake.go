package analyzer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Fake is an in-memory Analyzer for tests.
type Fake struct {
	Text  string
	Model string
	Err   error
	// Delay holds the call open; a context deadline shorter than Delay
	// yields ErrTimeout and a cancellation yields ErrCanceled.
	Delay time.Duration

	mu       sync.Mutex
	calls    int
	requests []Request
}

func (f *Fake) Analyze(ctx context.Context, req Request) (*Result, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, ErrCanceled
			}
			return nil, ErrTimeout
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}

	model := f.Model
	if model == "" {
		model = "fake"
	}
	return &Result{
		Text: f.Text,
		Metadata: Metadata{
			Model:        model,
			Timestamp:    time.Now().UTC(),
			InputTokens:  len(req.Query),
			OutputTokens: len(f.Text),
		},
	}, nil
}

// Calls returns how many times Analyze was invoked.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequest returns the most recent request, if any.
func (f *Fake) LastRequest() (Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return Request{}, false
	}
	return f.requests[len(f.requests)-1], true
}
