package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// LocalBroker fans messages out to in-process subscribers. It is used when no
// Redis URL is configured, which is enough for a single API instance.
type LocalBroker struct {
	mu     sync.Mutex
	subs   map[string]map[chan []byte]struct{}
	closed bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan []byte]struct{})}
}

func (b *LocalBroker) Publish(_ context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("broker closed")
	}
	for ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
			// slow subscriber; drop rather than block publishers
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 100)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("broker closed")
	}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan []byte]struct{})
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[channel][ch]; ok {
			delete(b.subs[channel], ch)
			close(ch)
		}
	}()

	return ch, nil
}

func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for _, set := range b.subs {
		for ch := range set {
			close(ch)
		}
	}
	b.subs = make(map[string]map[chan []byte]struct{})
	return nil
}
