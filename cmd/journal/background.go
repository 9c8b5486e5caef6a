package main

import (
	"context"
	"fmt"
	"sync"
)

// background tracks long-running components so shutdown can wait for them
// before the store is closed.
type background struct {
	wg   sync.WaitGroup
	errs chan error
}

func newBackground(size int) *background {
	return &background{errs: make(chan error, size)}
}

// Go runs fn; a non-nil error is reported on Errors as "name: err".
func (b *background) Go(name string, fn func() error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := fn(); err != nil {
			select {
			case b.errs <- fmt.Errorf("%s: %w", name, err):
			default:
			}
		}
	}()
}

// Errors delivers the first failures of the tracked components.
func (b *background) Errors() <-chan error { return b.errs }

// Wait blocks until every component returned or ctx ends.
func (b *background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for components: %w", ctx.Err())
	}
}
