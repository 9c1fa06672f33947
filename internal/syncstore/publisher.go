package syncstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"catering/backend/internal/metrics"
)

type record struct {
	collection string
	id         string
	payload    []byte
}

// Publisher mirrors local writes to a remote Store from a single background
// goroutine. Publish never blocks: when the queue is full the record is
// dropped and logged. Remote failures are logged and otherwise ignored.
type Publisher struct {
	store   Store
	log     *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan record
	done   chan struct{}
}

func NewPublisher(store Store, queueSize int, log *zap.Logger, m *metrics.Metrics) *Publisher {
	if store == nil {
		store = NoopStore{}
	}
	if queueSize < 1 {
		queueSize = 256
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Publisher{
		store:   store,
		log:     log.Named("sync"),
		metrics: m,
		timeout: 3 * time.Second,
		queue:   make(chan record, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) Publish(collection string, id string, value any) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		p.log.Warn("encode sync record", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		p.metrics.SyncFailure(collection, "encode")
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- record{collection: collection, id: id, payload: payload}:
	default:
		p.log.Warn("sync queue full, dropping record", zap.String("collection", collection), zap.String("id", id))
		p.metrics.SyncFailure(collection, "dropped")
	}
}

func (p *Publisher) Pull(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	if p == nil {
		return map[string]json.RawMessage{}, nil
	}
	return p.store.Pull(ctx, collection)
}

// Close stops accepting records and waits until the queue is drained.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	for rec := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.store.Upsert(ctx, rec.collection, rec.id, rec.payload)
		cancel()
		if err != nil {
			p.log.Warn("remote sync failed", zap.String("collection", rec.collection), zap.String("id", rec.id), zap.Error(err))
			p.metrics.SyncFailure(rec.collection, "upsert")
		}
	}
}
