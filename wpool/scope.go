// Package wpool implements a bounded fork-join scope in which worker
// goroutines may hold bufview.View slices into the caller's frame/plane
// buffers, plus a small plane-buffer pool so repeated encode/decode calls
// don't reallocate.
//
// Scope is a thin wrapper over golang.org/x/sync/errgroup: Wait only returns
// once every Go'd function has returned, and a non-nil error cancels the
// shared context without forcibly stopping goroutines that aren't watching
// it. Wait reports only the first failure and does not abort siblings:
// every worker runs to completion regardless of an earlier sibling's error.
package wpool

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Scope bounds a fork-join region. No View obtained inside a Scope may be
// retained past the matching Wait call.
type Scope struct {
	g   *errgroup.Group
	ctx context.Context
}

// NewScope starts a new fork-join scope bound to ctx. The context returned
// by Context is canceled as soon as any Go'd function returns an error,
// letting still-running workers notice early if they choose to check it.
func NewScope(ctx context.Context) *Scope {
	g, gctx := errgroup.WithContext(ctx)
	return &Scope{g: g, ctx: gctx}
}

// Context returns the scope's (possibly already canceled) context.
func (s *Scope) Context() context.Context { return s.ctx }

// Go spawns fn as a worker. A panic inside fn is recovered and reported as
// an error rather than crashing the whole process.
func (s *Scope) Go(fn func() error) {
	s.g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("wpool: worker panicked: %v", r)
			}
		}()
		return fn()
	})
}

// Wait blocks until every Go'd worker has returned, then returns the first
// non-nil error encountered (if any). Every worker runs to completion
// regardless of whether an earlier one failed, since the channel planes
// workers write into are disjoint and there is nothing to protect by
// aborting early.
func (s *Scope) Wait() error {
	return s.g.Wait()
}
