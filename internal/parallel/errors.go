// Package parallel provides the fork-join helpers used by the convolution
// engine: recursive range splitting under a bounded goroutine budget and
// first-error collection for fan-out work.
package parallel

import "sync"

// ErrorCollector collects the first error from parallel goroutines.
// It is safe for use by multiple goroutines simultaneously.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	wg.Add(2)
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(doWork1())
//	}()
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(doWork2())
//	}()
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError records an error if one hasn't been recorded yet.
// Nil errors are ignored.
func (c *ErrorCollector) SetError(err error) {
	if err != nil {
		c.once.Do(func() {
			c.err = err
		})
	}
}

// Err returns the first recorded error, or nil if no error was recorded.
// It should be called after all goroutines have completed.
func (c *ErrorCollector) Err() error {
	return c.err
}
