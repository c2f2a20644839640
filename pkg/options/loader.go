package options

import (
	"context"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FieldLoader serialises option loads for one rendered field. Starting a new
// load cancels the one in flight, and the superseded channel is closed
// without delivering, so a slow stale response can never overwrite a newer
// one.
type FieldLoader struct {
	resolver *Resolver

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewFieldLoader binds a loader to a resolver.
func NewFieldLoader(resolver *Resolver) *FieldLoader {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &FieldLoader{resolver: resolver}
}

// Load starts a new resolution and supersedes any previous one.
func (l *FieldLoader) Load(ctx context.Context, source model.OptionSource, static string, api *model.APIConfig) <-chan Outcome {
	reqCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		defer cancel()
		outcome := <-l.resolver.Load(reqCtx, source, static, api)

		l.mu.Lock()
		current := gen == l.gen
		if current {
			l.cancel = nil
		}
		l.mu.Unlock()
		if current {
			out <- outcome
		}
	}()
	return out
}

// Stop cancels the load in flight, if any. Its channel closes without a value.
func (l *FieldLoader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
