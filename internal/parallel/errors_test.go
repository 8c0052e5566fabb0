package parallel

import (
	"errors"
	"sync"
	"testing"
)

func TestErrorCollector_FirstErrorWins(t *testing.T) {
	t.Parallel()
	var ec ErrorCollector
	first := errors.New("first")

	ec.SetError(nil)
	if ec.Err() != nil {
		t.Fatalf("nil must be ignored, got %v", ec.Err())
	}
	ec.SetError(first)
	ec.SetError(errors.New("second"))
	ec.SetError(nil)
	if ec.Err() != first {
		t.Errorf("Err() = %v, want %v", ec.Err(), first)
	}
}

func TestErrorCollector_Concurrency(t *testing.T) {
	t.Parallel()
	var ec ErrorCollector
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ec.SetError(errors.New("leaf failed"))
		}()
	}
	close(start)
	wg.Wait()

	if ec.Err() == nil || ec.Err().Error() != "leaf failed" {
		t.Errorf("unexpected collected error %v", ec.Err())
	}
}
