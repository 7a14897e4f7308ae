// Package contend runs the same function on many goroutines that are all
// released at the same instant, to put maximum pressure on whatever they
// share.
package contend

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Run calls fn on n goroutines. No goroutine calls fn until all n have
// started. Results are returned in index order. The first error cancels the
// context passed to the remaining calls and is returned with no results.
func Run[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return nil, errors.New("contend: nil fn")
	}

	out := make([]T, n)
	start, ready := barrier(n)
	g, gCtx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			ready.Done()
			select {
			case <-start:
			case <-gCtx.Done():
				return gCtx.Err()
			}
			v, err := fn(gCtx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	ready.Wait()
	close(start)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RunAll is like Run but never stops early: every call runs, and the error
// of call i is errs[i].
func RunAll[T any](n int, fn func(i int) (T, error)) (out []T, errs []error) {
	if n <= 0 || fn == nil {
		return nil, nil
	}
	out, errs = make([]T, n), make([]error, n)
	start, ready := barrier(n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			ready.Done()
			<-start
			out[i], errs[i] = fn(i)
			return nil
		})
	}
	ready.Wait()
	close(start)
	_ = g.Wait()
	return out, errs
}

func barrier(n int) (chan struct{}, *sync.WaitGroup) {
	ready := &sync.WaitGroup{}
	ready.Add(n)
	return make(chan struct{}), ready
}

// Same reports whether every element of vs equals the first.
func Same[T comparable](vs []T) bool {
	for _, v := range vs[min(1, len(vs)):] {
		if v != vs[0] {
			return false
		}
	}
	return true
}

// Joined returns the non-nil errors of errs joined into one, or nil.
func Joined(errs []error) error {
	return errors.Join(errs...)
}
