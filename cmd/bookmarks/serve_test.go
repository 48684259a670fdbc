package main

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
)

type fixedCounter struct {
	n   int
	err error
}

func (f fixedCounter) Count(context.Context) (int, error) { return f.n, f.err }

func TestStartBookmarkGauge_SetsInitialValue(t *testing.T) {
	c, err := startBookmarkGauge(context.Background(), "@every 1h", fixedCounter{n: 7}, logger.NewNop())
	if err != nil {
		t.Fatalf("startBookmarkGauge: %v", err)
	}
	defer c.Stop()

	if got := testutil.ToFloat64(metrics.BookmarksTotal); got != 7 {
		t.Errorf("bookmarks_total = %v, want 7", got)
	}
}

func TestStartBookmarkGauge_KeepsValueOnError(t *testing.T) {
	metrics.BookmarksTotal.Set(3)
	c, err := startBookmarkGauge(context.Background(), "@every 1h", fixedCounter{err: errors.New("down")}, logger.NewNop())
	if err != nil {
		t.Fatalf("startBookmarkGauge: %v", err)
	}
	defer c.Stop()

	if got := testutil.ToFloat64(metrics.BookmarksTotal); got != 3 {
		t.Errorf("bookmarks_total = %v, want 3", got)
	}
}

func TestStartBookmarkGauge_BadSchedule(t *testing.T) {
	if _, err := startBookmarkGauge(context.Background(), "not a schedule", fixedCounter{}, logger.NewNop()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
