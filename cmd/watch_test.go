package cmd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunWatchWaitsForInitialTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	tick := func() {
		close(started)
		<-release
		finished.Store(true)
	}

	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, zap.NewNop(), time.Hour, tick) }()

	<-started
	cancel()

	select {
	case <-done:
		t.Fatal("watch loop exited before the startup run finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !finished.Load() {
		t.Fatal("expected the startup run to complete before shutdown")
	}
}
