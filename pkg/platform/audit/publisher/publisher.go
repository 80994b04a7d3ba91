// Package publisher emits audit events to a store and, when configured, to a
// Kafka sink. The default mode is synchronous: Emit returns only after the
// event is persisted. With an async buffer, Emit is non-blocking and events
// that cannot be buffered are dropped rather than stalling domain logic.
package publisher

import (
	"context"
	"errors"
	"sync"
	"time"

	id "grantflow/pkg/domain"
	audit "grantflow/pkg/platform/audit"
)

// Sink forwards events to an external system after they are stored.
// Sink failures never fail the emit: the store is the source of truth.
type Sink interface {
	Forward(ctx context.Context, event audit.Event) error
	Close()
}

type Publisher struct {
	store audit.Store
	sink  Sink

	inbox     chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity. Events are dropped when the buffer is full.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithSink forwards every stored event to the given sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		p.persist(context.Background(), event)
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) {
	if err := p.store.Append(ctx, event); err != nil {
		return
	}
	if p.sink != nil {
		_ = p.sink.Forward(ctx, event)
	}
}

// Emit records an audit event. A zero timestamp is filled in with the
// current time. Emitting on a closed publisher returns an error.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	// The read lock covers the inbox send so Close cannot shut the channel
	// under an in-flight Emit.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("audit publisher is closed")
	}

	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil {
			return err
		}
		if p.sink != nil {
			_ = p.sink.Forward(ctx, event)
		}
		return nil
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("audit buffer full")
	}
}

// List returns the audit trail of one dossier.
func (p *Publisher) List(ctx context.Context, dossierID id.DossierID) ([]audit.Event, error) {
	return p.store.ListByDossier(ctx, dossierID)
}

// ListRecent returns the newest events across all dossiers.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains buffered events and shuts down the sink. Safe to call more
// than once.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
		if p.sink != nil {
			p.sink.Close()
		}
	})
}
