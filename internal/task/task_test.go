package task

import (
	"context"
	"testing"
	"time"
)

func TestTryAcquireBoundsConcurrency(t *testing.T) {
	r := NewRuntime(2)
	if !r.TryAcquire() || !r.TryAcquire() {
		t.Fatal("first two acquires should succeed")
	}
	if r.TryAcquire() {
		t.Fatal("third acquire should fail while two slots are held")
	}

	release := make(chan struct{})
	h := SpawnT(r, func() int {
		<-release
		return 1
	})
	close(release)
	if _, err := BlockOn(context.Background(), h); err != nil {
		t.Fatalf("BlockOn: %v", err)
	}

	// The finished task released its slot; the other is still held.
	if !r.TryAcquire() {
		t.Fatal("slot should be free after the task completed")
	}
}

func TestTryTakeResultBeforeAndAfterCompletion(t *testing.T) {
	r := NewRuntime(1)
	if !r.TryAcquire() {
		t.Fatal("acquire failed")
	}

	release := make(chan struct{})
	h := SpawnT(r, func() string {
		<-release
		return "done"
	})

	if _, ok := h.TryTakeResult(); ok {
		t.Fatal("result should not be available before the task finishes")
	}

	close(release)
	deadline := time.After(2 * time.Second)
	for {
		if v, ok := h.TryTakeResult(); ok {
			if v != "done" {
				t.Fatalf("got %q, want %q", v, "done")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("task never completed")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestBlockOnRespectsContext(t *testing.T) {
	r := NewRuntime(1)
	if !r.TryAcquire() {
		t.Fatal("acquire failed")
	}

	release := make(chan struct{})
	h := SpawnT(r, func() int {
		<-release
		return 0
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := BlockOn(ctx, h); err == nil {
		t.Fatal("expected context deadline error")
	}
}
