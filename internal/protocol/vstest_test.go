package protocol

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestVSTestGate_AtMostOneSessionInFlight(t *testing.T) {
	const sessions = 4

	var mu sync.Mutex
	inflight := 0
	maxSeen := 0

	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := acquireVSTestGate(context.Background()); err != nil {
				t.Errorf("unexpected acquire error: %v", err)
				return
			}
			defer releaseVSTestGate()

			mu.Lock()
			inflight++
			if inflight > maxSeen {
				maxSeen = inflight
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inflight--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most one session behind the gate, saw %d", maxSeen)
	}
}

func TestVSTestGate_CancelledAcquireLeavesGateReleasable(t *testing.T) {
	if err := acquireVSTestGate(context.Background()); err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}

	// A second acquirer gives up when its context is cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := acquireVSTestGate(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	releaseVSTestGate()

	// The abandoned acquire must not have consumed the slot.
	done := make(chan error, 1)
	go func() {
		err := acquireVSTestGate(context.Background())
		if err == nil {
			releaseVSTestGate()
		}
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("gate not releasable after cancelled acquire: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("gate stayed held after release")
	}
}
