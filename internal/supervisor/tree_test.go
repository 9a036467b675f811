// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/meridian/internal/config"
)

// stubService counts starts and fails the first failures runs.
type stubService struct {
	name     string
	starts   atomic.Int32
	failures atomic.Int32
}

func newStubService(name string, failures int32) *stubService {
	s := &stubService{name: name}
	s.failures.Store(failures)
	return s
}

func (s *stubService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.failures.Add(-1) >= 0 {
		return errors.New("stub failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForStarts(t *testing.T, svc *stubService, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.starts.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("expected %s to start at least %d times, got %d", svc.name, want, svc.starts.Load())
}

func TestNewSupervisorTree(t *testing.T) {
	t.Run("applies defaults for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("NewSupervisorTree() error = %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("expected root supervisor")
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("expected default config, got %+v", tree.config)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
		if err != nil {
			t.Fatalf("NewSupervisorTree() error = %v", err)
		}
		if tree.config.FailureThreshold != 2 {
			t.Errorf("expected FailureThreshold 2, got %v", tree.config.FailureThreshold)
		}
		if tree.config.ShutdownTimeout != time.Second {
			t.Errorf("expected ShutdownTimeout 1s, got %v", tree.config.ShutdownTimeout)
		}
		if tree.config.FailureDecay != 30 {
			t.Errorf("expected default FailureDecay 30, got %v", tree.config.FailureDecay)
		}
	})
}

func TestTreeConfigFor(t *testing.T) {
	tests := []struct {
		name     string
		shutdown time.Duration
		want     time.Duration
	}{
		{"server timeout plus margin", 20 * time.Second, 25 * time.Second},
		{"unset falls back to default", 0, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{ShutdownTimeout: tt.shutdown}}
			got := TreeConfigFor(cfg)
			if got.ShutdownTimeout != tt.want {
				t.Errorf("expected ShutdownTimeout %v, got %v", tt.want, got.ShutdownTimeout)
			}
			if got.FailureThreshold != 5 {
				t.Errorf("expected FailureThreshold 5, got %v", got.FailureThreshold)
			}
		})
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	data := newStubService("database-maintenance", 0)
	messaging := newStubService("refresh-manager", 0)
	api := newStubService("http-server", 0)
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitForStarts(t, data, 1)
	waitForStarts(t, messaging, 1)
	waitForStarts(t, api, 1)

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("expected all services stopped, got %v", report)
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	failing := newStubService("refresh-manager", 2)
	stable := newStubService("http-server", 0)
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tree.Serve(ctx)

	// Two failures, then a run that blocks
	waitForStarts(t, failing, 3)
	waitForStarts(t, stable, 1)

	if got := stable.starts.Load(); got != 1 {
		t.Errorf("expected stable service to start once, got %d", got)
	}
}
