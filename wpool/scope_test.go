package wpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestScopeWaitsForAllWorkers(t *testing.T) {
	t.Parallel()
	s := NewScope(context.Background())
	var done atomic.Int32
	for i := 0; i < 8; i++ {
		s.Go(func() error {
			done.Add(1)
			return nil
		})
	}
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if got := done.Load(); got != 8 {
		t.Fatalf("done = %d, want 8", got)
	}
}

func TestScopePropagatesFirstError(t *testing.T) {
	t.Parallel()
	s := NewScope(context.Background())
	sentinel := errors.New("boom")
	var completed atomic.Int32

	s.Go(func() error { return sentinel })
	s.Go(func() error {
		completed.Add(1)
		return nil
	})
	s.Go(func() error {
		completed.Add(1)
		return nil
	})

	err := s.Wait()
	if !errors.Is(err, sentinel) {
		t.Fatalf("Wait() error = %v, want wrapping %v", err, sentinel)
	}
	if completed.Load() != 2 {
		t.Fatalf("completed = %d, want 2 (other workers must still run to completion)", completed.Load())
	}
}

func TestScopeRecoversPanic(t *testing.T) {
	t.Parallel()
	s := NewScope(context.Background())
	s.Go(func() error {
		panic("kaboom")
	})
	err := s.Wait()
	if err == nil {
		t.Fatal("expected an error from a panicking worker")
	}
}

func TestPoolReusesPlanes(t *testing.T) {
	t.Parallel()
	p := NewPool(1) // below MinWorkers, should be clamped
	if p.Workers() != MinWorkers {
		t.Fatalf("Workers() = %d, want %d", p.Workers(), MinWorkers)
	}
	buf := p.GetPlane(64)
	for i := range buf {
		buf[i] = byte(i)
	}
	p.PutPlane(buf)

	reused := p.GetPlane(64)
	if len(reused) != 64 {
		t.Fatalf("len(reused) = %d, want 64", len(reused))
	}
}

func TestNilPoolAllocates(t *testing.T) {
	t.Parallel()
	var p *Pool
	if p.Workers() != MinWorkers {
		t.Fatalf("nil pool Workers() = %d, want %d", p.Workers(), MinWorkers)
	}
	buf := p.GetPlane(16)
	if len(buf) != 16 {
		t.Fatalf("len(buf) = %d, want 16", len(buf))
	}
	p.PutPlane(buf) // must not panic
}

func TestPoolGoBoundsConcurrency(t *testing.T) {
	t.Parallel()
	const limit = MinWorkers
	p := NewPool(limit)

	var current, max atomic.Int32
	s := NewScope(context.Background())
	for i := 0; i < limit*4; i++ {
		p.Go(s, func() error {
			n := current.Add(1)
			for {
				m := max.Load()
				if n <= m || max.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return nil
		})
	}
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if got := max.Load(); got > int32(limit) {
		t.Fatalf("observed %d concurrent workers, want <= %d", got, limit)
	}
}

func TestNilPoolGoRunsImmediately(t *testing.T) {
	t.Parallel()
	var p *Pool
	s := NewScope(context.Background())
	var done atomic.Int32
	for i := 0; i < 8; i++ {
		p.Go(s, func() error {
			done.Add(1)
			return nil
		})
	}
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if got := done.Load(); got != 8 {
		t.Fatalf("done = %d, want 8", got)
	}
}
