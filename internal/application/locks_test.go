package application

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	t.Parallel()

	locks := newKeyedMutex()
	unlock := locks.Lock("booking-1")

	acquired := make(chan struct{})
	go func() {
		release := locks.Lock("booking-1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatalf("second holder acquired a held key")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("second holder never acquired the key")
	}
}

func TestKeyedMutexIndependentKeysAndCleanup(t *testing.T) {
	t.Parallel()

	locks := newKeyedMutex()
	a := locks.Lock("a")
	b := locks.Lock("b")
	if got := locks.held(); got != 2 {
		t.Fatalf("expected 2 held keys, got %d", got)
	}
	a()
	b()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("shared")()
		}()
	}
	wg.Wait()

	if got := locks.held(); got != 0 {
		t.Fatalf("expected no keys after release, got %d", got)
	}
}
