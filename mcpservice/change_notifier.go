package mcpservice

import (
	"context"
	"sync"
)

// ChangeNotifier is a small in-process fan-out used by stores whose contents
// can change underneath a running server (e.g. a watched resources
// directory). The zero value is ready to use.
type ChangeNotifier struct {
	mu     sync.RWMutex
	subs   []chan struct{}
	closed bool
}

// ChangeSubscriber is implemented by stores that publish change ticks.
type ChangeSubscriber interface {
	Subscriber() <-chan struct{}
}

// Notify delivers a tick to every subscriber without blocking. A subscriber
// that has not drained its previous tick misses this one. It returns ctx.Err()
// if the context is already done.
func (cn *ChangeNotifier) Notify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cn.mu.RLock()
	defer cn.mu.RUnlock()
	if cn.closed {
		return nil
	}
	for _, ch := range cn.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Close closes every subscriber channel. Later calls to Subscriber return an
// already-closed channel.
func (cn *ChangeNotifier) Close() {
	cn.mu.Lock()
	if cn.closed {
		cn.mu.Unlock()
		return
	}
	cn.closed = true
	subs := cn.subs
	cn.subs = nil
	cn.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

// Subscriber registers a new listener. The channel has capacity 1.
func (cn *ChangeNotifier) Subscriber() <-chan struct{} {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.closed {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	ch := make(chan struct{}, 1)
	cn.subs = append(cn.subs, ch)
	return ch
}
