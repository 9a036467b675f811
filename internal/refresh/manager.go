// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/meridian/internal/analytics"
	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/snapshots"
	"github.com/tomtom215/meridian/internal/validation"
)

// Refresh triggers
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// MessageSnapshotUpdated is the WebSocket message type broadcast after every
// successful refresh.
const MessageSnapshotUpdated = "snapshot_updated"

// SnapshotStore persists snapshots between restarts.
// Implemented by *snapshots.Store.
type SnapshotStore interface {
	Latest(ctx context.Context) (*models.DashboardSnapshot, error)
	Save(ctx context.Context, snap *models.DashboardSnapshot) error
}

// Broadcaster pushes messages to connected dashboard clients.
// Implemented by *websocket.Hub.
type Broadcaster interface {
	BroadcastJSON(messageType string, data interface{})
}

// Status describes the refresh loop for health reporting.
type Status struct {
	Running     bool      `json:"running"`
	LastAttempt time.Time `json:"lastAttempt"`
	LastSuccess time.Time `json:"lastSuccess"`
	LastError   string    `json:"lastError,omitempty"`
	Refreshes   int64     `json:"refreshes"`
	Failures    int64     `json:"failures"`
}

// Manager periodically re-composes the dashboard snapshot from the record store.
//
// One refresh runs at a time. A refresh that fails leaves the previously
// published snapshot in place. Readers get the current snapshot through
// Snapshot without blocking on a refresh in progress.
type Manager struct {
	source  RecordSource
	store   SnapshotStore // optional
	hub     Broadcaster   // optional
	cfg     config.RefreshConfig
	limiter *rate.Limiter

	dashboard atomic.Pointer[config.DashboardConfig]
	current   atomic.Pointer[models.DashboardSnapshot]

	refreshMu sync.Mutex // Serializes refreshes

	mu       sync.RWMutex // Protects fields below
	running  bool
	status   Status
	stopChan chan struct{}
	wg       sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// NewManager creates a refresh manager. store and hub may be nil.
func NewManager(source RecordSource, store SnapshotStore, hub Broadcaster, cfg *config.Config) *Manager {
	limit := rate.Inf
	if cfg.Refresh.ManualInterval > 0 {
		limit = rate.Every(cfg.Refresh.ManualInterval)
	}
	burst := cfg.Refresh.ManualBurst
	if burst < 1 {
		burst = 1
	}

	m := &Manager{
		source:  source,
		store:   store,
		hub:     hub,
		cfg:     cfg.Refresh,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	dash := cfg.Dashboard
	m.dashboard.Store(&dash)
	return m
}

// Snapshot returns the most recently published snapshot, or nil before the
// first successful refresh or restore.
func (m *Manager) Snapshot() *models.DashboardSnapshot {
	return m.current.Load()
}

// Ready reports whether a snapshot is available.
func (m *Manager) Ready() bool {
	return m.current.Load() != nil
}

// Status returns a copy of the refresh loop status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// DashboardConfig returns the composition settings in effect.
func (m *Manager) DashboardConfig() config.DashboardConfig {
	return *m.dashboard.Load()
}

// UpdateDashboard swaps the composition settings used by subsequent refreshes.
// Used when the configuration file changes on disk.
func (m *Manager) UpdateDashboard(cfg config.DashboardConfig) {
	m.dashboard.Store(&cfg)
	logging.Info().
		Int("kpi_targets", len(cfg.KPITargets)).
		Int("moving_average_window", cfg.MovingAverageWindow).
		Msg("Dashboard settings updated")
}

// Start restores the last persisted snapshot, runs an initial refresh in the
// background and begins the periodic refresh loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}

	logging.Info().Dur("interval", m.cfg.Interval).Msg("Starting refresh manager...")

	m.running = true
	m.status.Running = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	m.restore(ctx)

	// Add all goroutines to WaitGroup BEFORE starting them
	m.wg.Add(2)

	go func() {
		defer m.wg.Done()
		if _, err := m.refresh(ctx, TriggerStartup); err != nil {
			logging.Warn().Err(err).Msg("Initial refresh failed (will retry)")
		}
	}()

	go m.refreshLoop(ctx)
	return nil
}

// Stop ends the refresh loop and waits for an in-flight refresh to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNotRunning
	}
	m.running = false
	m.status.Running = false
	m.mu.Unlock()

	logging.Info().Msg("Stopping refresh manager...")

	close(m.stopChan)
	m.wg.Wait()

	logging.Info().Msg("Refresh manager stopped")
	return nil
}

// TriggerRefresh runs a refresh immediately. Calls beyond the configured
// manual rate return ErrThrottled without touching the store.
func (m *Manager) TriggerRefresh(ctx context.Context) (*models.DashboardSnapshot, error) {
	if !m.limiter.Allow() {
		return nil, ErrThrottled
	}
	return m.refresh(ctx, TriggerManual)
}

// refreshLoop runs the periodic refresh
func (m *Manager) refreshLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			if _, err := m.refresh(ctx, TriggerSchedule); err != nil {
				logging.Error().Err(err).Msg("Scheduled refresh failed")
			}
		}
	}
}

// restore publishes the last persisted snapshot so the dashboard is served
// before the first refresh completes.
func (m *Manager) restore(ctx context.Context) {
	if m.store == nil {
		return
	}

	snap, err := m.store.Latest(ctx)
	if err != nil {
		if !errors.Is(err, snapshots.ErrNotFound) {
			logging.Warn().Err(err).Msg("Failed to restore last snapshot")
		}
		return
	}

	// A refresh that finished first wins
	if m.current.CompareAndSwap(nil, snap) {
		metrics.SnapshotGeneratedAt.Set(float64(snap.GeneratedAt.Unix()))
		logging.Info().
			Str("snapshot_id", snap.ID).
			Time("generated_at", snap.GeneratedAt).
			Msg("Restored last snapshot")
	}
}

// refresh runs one fetch, sanitize, compose, publish cycle.
func (m *Manager) refresh(ctx context.Context, trigger string) (*models.DashboardSnapshot, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	// Manual refreshes inherit the request's correlation ID.
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	start := m.now()
	m.mu.Lock()
	m.status.LastAttempt = start
	m.mu.Unlock()

	timeout := m.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cycleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snap, err := m.compose(cycleCtx)
	duration := time.Since(start)
	metrics.RecordRefresh(trigger, duration, err)

	m.mu.Lock()
	if err != nil {
		m.status.Failures++
		m.status.LastError = err.Error()
	} else {
		m.status.Refreshes++
		m.status.LastSuccess = snap.GeneratedAt
		m.status.LastError = ""
	}
	m.mu.Unlock()

	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("trigger", trigger).
			Str("stage", metrics.RefreshFailureStage(err)).
			Msg("Refresh failed, keeping previous snapshot")
		return nil, err
	}

	m.publish(ctx, snap)

	logging.Ctx(ctx).Info().
		Str("trigger", trigger).
		Str("snapshot_id", snap.ID).
		Int("records", snap.DataQuality.RecordsProcessed).
		Int("warnings", len(snap.DataQuality.Warnings)).
		Dur("duration", duration).
		Msg("Dashboard refreshed")
	return snap, nil
}

// compose loads records and builds a snapshot. It does not publish.
func (m *Manager) compose(ctx context.Context) (*models.DashboardSnapshot, error) {
	records, err := m.source.LoadRecords(ctx)
	if err != nil {
		var staged *StageError
		if errors.As(err, &staged) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &StageError{Stage: StageFetch, Err: fmt.Errorf("load records: %w", err)}
	}

	metrics.RecordRecordsLoaded(map[string]int{
		string(models.KindRevenue):     len(records.Revenue),
		string(models.KindAcquisition): len(records.Acquisition),
		string(models.KindEngagement):  len(records.Engagement),
		string(models.KindRetention):   len(records.Retention),
		string(models.KindFunnel):      len(records.Funnels),
	})

	clean, report := validation.SanitizeRecords(records)
	for _, e := range report.Entries() {
		metrics.RecordSkipped(string(e.Kind), e.Reason, e.Count)
	}
	if report.Total() > 0 {
		logging.Ctx(ctx).Warn().Int("skipped", report.Total()).Msg("Skipped malformed records")
	}

	dash := m.dashboard.Load()
	opts := analytics.Options{
		ID:                  m.newID(),
		Now:                 m.now().UTC(),
		MovingAverageWindow: dash.MovingAverageWindow,
		LTVFallbackMonths:   dash.LTVFallbackMonths,
	}
	in := analytics.Inputs{
		Records:    clean,
		KPITargets: dash.KPITargets,
		MRR:        dash.MRR,
		ChurnRate:  dash.ChurnRate,
		TotalUsers: dash.TotalUsers,
		Skipped:    report.ByKind(),
	}

	composeStart := time.Now()
	snap := analytics.Compose(in, opts)
	metrics.RecordCompose(time.Since(composeStart), len(snap.DataQuality.Warnings))

	return snap, nil
}

// publish makes snap current, persists it and notifies clients. Persistence
// failures are logged; the snapshot stays published.
func (m *Manager) publish(ctx context.Context, snap *models.DashboardSnapshot) {
	m.current.Store(snap)
	metrics.SnapshotGeneratedAt.Set(float64(snap.GeneratedAt.Unix()))

	kpis := make(map[string]float64, len(snap.KPITargets))
	for _, k := range snap.KPITargets {
		kpis[k.ID] = k.Value
	}
	metrics.SetKPIValues(kpis)

	if m.store != nil {
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if err := m.store.Save(persistCtx, snap); err != nil {
			logging.Error().Err(err).Str("snapshot_id", snap.ID).Msg("Failed to persist snapshot")
		}
		cancel()
	}

	if m.hub != nil {
		m.hub.BroadcastJSON(MessageSnapshotUpdated, snap)
	}
}
