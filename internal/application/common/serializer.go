package common

import (
	"context"
	"sync"
)

// Serializer runs mutations one at a time. Every write to factories, tax records
// and invoices goes through the same Serializer so a player action and a
// scheduler pass never interleave on one record.
type Serializer interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MutexSerializer serializes with a plain mutex. Used by one-shot CLI runs and
// tests where no scheduler goroutine exists.
type MutexSerializer struct {
	mu sync.Mutex
}

func NewMutexSerializer() *MutexSerializer {
	return &MutexSerializer{}
}

func (s *MutexSerializer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}
