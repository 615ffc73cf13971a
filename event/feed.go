// Package event implements the Subscription pub-sub primitive used by
// the teacher project for internal event distribution (referenced as
// event.Subscription / event.NewSubscription throughout les/api_backend.go).
// The receiver's downstream channel (C5) builds its priority-aware publish
// point on top of this package rather than reinventing channel plumbing.
package event

import "sync"

// Subscription represents a producer started by NewSubscription. Err
// returns a channel closed when the subscription ends; Unsubscribe cancels
// it early.
type Subscription interface {
	Err() <-chan error
	Unsubscribe()
}

type funcSub struct {
	unsub chan struct{}
	err   chan error
	once  sync.Once
}

// NewSubscription runs fn in its own goroutine, passing it a channel that
// closes when Unsubscribe is called. fn's return value (nil or an error) is
// delivered on Err().
func NewSubscription(fn func(quit <-chan struct{}) error) Subscription {
	s := &funcSub{unsub: make(chan struct{}), err: make(chan error, 1)}
	go func() {
		s.err <- fn(s.unsub)
		close(s.err)
	}()
	return s
}

func (s *funcSub) Err() <-chan error { return s.err }

func (s *funcSub) Unsubscribe() {
	s.once.Do(func() { close(s.unsub) })
}
