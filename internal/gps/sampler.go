package gps

import (
	"context"
	"sync"
	"time"

	"geopunch/internal/geo"

	"go.uber.org/zap"
)

const (
	defaultInterval = 10 * time.Second
	defaultTimeout  = 15 * time.Second
	defaultMaxAge   = 10 * time.Second
)

// Config controls the sampling cadence. Zero values fall back to the
// defaults: 10 s interval, 15 s per-call timeout, 10 s position cache.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	MaxAge   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxAge <= 0 {
		c.MaxAge = defaultMaxAge
	}
	return c
}

// Sampler polls the location provider on a fixed cadence and publishes
// a fresh Status after every cycle, success or failure. Cycles never
// overlap: a tick that fires while the previous call is still pending
// is skipped.
type Sampler struct {
	provider Provider
	cfg      Config
	onUpdate func(Status)
	logger   *zap.Logger

	mu       sync.Mutex
	last     Status
	lastFix  *Position
	inFlight bool
}

func NewSampler(provider Provider, cfg Config, onUpdate func(Status), logger ...*zap.Logger) *Sampler {
	l := zap.L().Named("gps.sampler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("gps.sampler")
	}
	return &Sampler{
		provider: provider,
		cfg:      cfg.withDefaults(),
		onUpdate: onUpdate,
		logger:   l,
	}
}

// Run samples once immediately, then on every interval tick until ctx
// is cancelled. It blocks; callers run it in a goroutine for as long as
// the punch screen is active.
func (s *Sampler) Run(ctx context.Context) {
	s.sample(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sampler stopped")
			return
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

// SampleNow runs a single on-demand cycle and returns the resulting
// status.
func (s *Sampler) SampleNow(ctx context.Context) Status {
	s.sample(ctx)
	return s.Status()
}

// Status returns the output of the most recent cycle.
func (s *Sampler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Sampler) sample(ctx context.Context) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn("previous sampling cycle still in flight, skipping tick")
		return
	}
	s.inFlight = true
	cached := s.cachedFix()
	s.mu.Unlock()

	var st Status
	switch {
	case cached != nil:
		st = statusFromPosition(*cached)
	case s.provider == nil:
		st = failureStatus(ErrNotSupported.Error())
	default:
		st = s.fetch(ctx)
	}

	s.mu.Lock()
	s.last = st
	if st.HasFix() && cached == nil {
		s.lastFix = &Position{
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			AccuracyM: *st.AccuracyM,
			At:        st.SampledAt,
		}
	}
	s.inFlight = false
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(st)
	}
}

func (s *Sampler) fetch(ctx context.Context) Status {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	pos, err := s.provider.CurrentPosition(callCtx)
	if err != nil {
		s.logger.Warn("position fetch failed", zap.Error(err))
		return failureStatus(err.Error())
	}
	return statusFromPosition(pos)
}

// cachedFix returns the last good position if it is still younger than
// MaxAge. Mirrors the geolocation maximumAge option. Caller holds mu.
func (s *Sampler) cachedFix() *Position {
	if s.lastFix == nil {
		return nil
	}
	if time.Since(s.lastFix.At) > s.cfg.MaxAge {
		s.lastFix = nil
		return nil
	}
	return s.lastFix
}

func statusFromPosition(pos Position) Status {
	acc := pos.AccuracyM
	at := pos.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rounded := geo.Round6(geo.Coordinate{Latitude: pos.Latitude, Longitude: pos.Longitude})
	return Status{
		Latitude:  rounded.Latitude,
		Longitude: rounded.Longitude,
		AccuracyM: &acc,
		SampledAt: at,
	}
}

func failureStatus(msg string) Status {
	return Status{
		Latitude:  0,
		Longitude: 0,
		AccuracyM: nil,
		Err:       msg,
		SampledAt: time.Now().UTC(),
	}
}
