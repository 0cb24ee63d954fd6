package database

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// AccessScope serializes access to a shared cursor. WithExclusive runs fn
// while holding the scope and releases it on every exit path, whether fn
// succeeds, fails, or the wait is cancelled.
type AccessScope interface {
	WithExclusive(ctx context.Context, fn func() error) error
}

// NewAccessScope returns the default scope, backed by a weight-1 semaphore
// so waiters honor context cancellation.
func NewAccessScope() AccessScope {
	return &semScope{sem: semaphore.NewWeighted(1)}
}

type semScope struct {
	sem *semaphore.Weighted
}

func (s *semScope) WithExclusive(ctx context.Context, fn func() error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errTimeout("cancelled while waiting for cursor access", err)
	}
	defer s.sem.Release(1)
	return fn()
}
