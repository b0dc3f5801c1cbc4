package punch

import (
	"context"
	"strings"
	"sync"

	"geopunch/internal/geo"
	"geopunch/internal/gps"

	"go.uber.org/zap"
)

// Snapshot is the punch screen's view after the latest sampling cycle.
type Snapshot struct {
	GPS               gps.Status
	DistanceM         float64
	FormattedDistance string
	Violation         bool
}

// Engine glues the sampler, distance computation, geofence policy and
// submitter together for one user against one office location. The
// distance and violation flag are recomputed every time the sampler
// publishes a new status.
type Engine struct {
	office    geo.Coordinate
	radiusM   float64
	sampler   *gps.Sampler
	status    *StatusController
	submitter *Submitter
	logger    *zap.Logger

	mu   sync.RWMutex
	last Snapshot
}

// EngineConfig wires an engine. RadiusM falls back to the 300 m
// default when non-positive.
type EngineConfig struct {
	Office   geo.Coordinate
	RadiusM  float64
	UserID   string
	GPS      gps.Config
	Provider gps.Provider
	Client   Client
	Logger   *zap.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	l := cfg.Logger
	if l == nil {
		l = zap.L()
	}
	radius := cfg.RadiusM
	if radius <= 0 {
		radius = geo.DefaultGeofenceRadiusM
	}

	status := NewStatusController(cfg.Client, l)
	e := &Engine{
		office:    geo.Round6(cfg.Office),
		radiusM:   radius,
		status:    status,
		submitter: NewSubmitter(cfg.Client, status, cfg.UserID, l),
		logger:    l.Named("punch.engine"),
		last: Snapshot{
			FormattedDistance: geo.FormatDistance(0),
		},
	}
	e.sampler = gps.NewSampler(cfg.Provider, cfg.GPS, e.onSample, l)
	return e
}

// Run fetches the initial attendance status and then samples until ctx
// is cancelled. The sampling goroutine and its timer stop with the
// context; nothing leaks past teardown.
func (e *Engine) Run(ctx context.Context) {
	if err := e.status.Refetch(ctx); err != nil {
		e.logger.Warn("initial status fetch failed", zap.Error(err))
	}
	e.sampler.Run(ctx)
}

// SampleNow forces one sampling cycle, for callers that cannot wait for
// the next tick.
func (e *Engine) SampleNow(ctx context.Context) Snapshot {
	e.sampler.SampleNow(ctx)
	return e.Snapshot()
}

func (e *Engine) onSample(st gps.Status) {
	snap := Snapshot{GPS: st}
	if st.HasFix() && !e.office.IsZero() {
		snap.DistanceM = geo.DistanceMeters(e.office, st.Coordinate())
		snap.Violation = geo.Violates(snap.DistanceM, e.radiusM)
	}
	snap.FormattedDistance = geo.FormatDistance(snap.DistanceM)

	e.mu.Lock()
	e.last = snap
	e.mu.Unlock()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

func (e *Engine) Status() *StatusController {
	return e.status
}

// CanSubmit reports whether the punch action is currently enabled: a
// device fix exists, and any geofence violation has a justification.
func (e *Engine) CanSubmit(reason string) bool {
	snap := e.Snapshot()
	if !snap.GPS.HasFix() {
		return false
	}
	if snap.Violation && strings.TrimSpace(reason) == "" {
		return false
	}
	return true
}

// Submit punches with the latest snapshot. The reason is only consulted
// when the snapshot violates the geofence.
func (e *Engine) Submit(ctx context.Context, reason string, capture CaptureSession) (Record, error) {
	snap := e.Snapshot()
	return e.submitter.Submit(ctx, Attempt{
		GPS:             snap.GPS,
		DistanceM:       snap.DistanceM,
		Violation:       snap.Violation,
		ViolationReason: reason,
		Capture:         capture,
	})
}
