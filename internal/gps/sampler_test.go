package gps

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeProvider struct {
	currentPositionFn func(ctx context.Context) (Position, error)
}

func (f *fakeProvider) CurrentPosition(ctx context.Context) (Position, error) {
	return f.currentPositionFn(ctx)
}

func TestSampler_SuccessRoundsCoordinates(t *testing.T) {
	provider := &fakeProvider{
		currentPositionFn: func(ctx context.Context) (Position, error) {
			return Position{Latitude: 20.29612345678, Longitude: 85.82459876543, AccuracyM: 12.5}, nil
		},
	}
	s := NewSampler(provider, Config{}, nil, zap.NewNop())

	st := s.SampleNow(context.Background())
	assert.True(t, st.HasFix())
	assert.Equal(t, 20.296123, st.Latitude)
	assert.Equal(t, 85.824599, st.Longitude)
	assert.Equal(t, 12.5, *st.AccuracyM)
	assert.Empty(t, st.Err)
}

func TestSampler_FailureResetsStatus(t *testing.T) {
	provider := &fakeProvider{
		currentPositionFn: func(ctx context.Context) (Position, error) {
			return Position{}, errors.New("permission denied")
		},
	}
	s := NewSampler(provider, Config{}, nil, zap.NewNop())

	st := s.SampleNow(context.Background())
	assert.False(t, st.HasFix())
	assert.Zero(t, st.Latitude)
	assert.Zero(t, st.Longitude)
	assert.Nil(t, st.AccuracyM)
	assert.Equal(t, "permission denied", st.Err)
}

func TestSampler_NoProviderNotSupported(t *testing.T) {
	s := NewSampler(nil, Config{}, nil, zap.NewNop())

	st := s.SampleNow(context.Background())
	assert.False(t, st.HasFix())
	assert.Equal(t, ErrNotSupported.Error(), st.Err)
}

func TestSampler_FailedCycleOverwritesPriorFix(t *testing.T) {
	var fail atomic.Bool
	provider := &fakeProvider{
		currentPositionFn: func(ctx context.Context) (Position, error) {
			if fail.Load() {
				return Position{}, errors.New("timeout")
			}
			return Position{Latitude: 20.2961, Longitude: 85.8245, AccuracyM: 5}, nil
		},
	}
	// MaxAge of a nanosecond defeats the position cache so the second
	// cycle reaches the provider again.
	s := NewSampler(provider, Config{MaxAge: time.Nanosecond}, nil, zap.NewNop())

	first := s.SampleNow(context.Background())
	assert.True(t, first.HasFix())

	fail.Store(true)
	time.Sleep(time.Millisecond)
	second := s.SampleNow(context.Background())
	assert.False(t, second.HasFix())
	assert.Equal(t, "timeout", second.Err)
	assert.Zero(t, second.Latitude)
}

func TestSampler_PositionCacheSkipsProvider(t *testing.T) {
	var calls atomic.Int32
	provider := &fakeProvider{
		currentPositionFn: func(ctx context.Context) (Position, error) {
			calls.Add(1)
			return Position{Latitude: 1, Longitude: 2, AccuracyM: 5, At: time.Now().UTC()}, nil
		},
	}
	s := NewSampler(provider, Config{MaxAge: time.Minute}, nil, zap.NewNop())

	s.SampleNow(context.Background())
	s.SampleNow(context.Background())
	assert.Equal(t, int32(1), calls.Load())
}

func TestSampler_RunPublishesAndStopsOnCancel(t *testing.T) {
	updates := make(chan Status, 16)
	provider := &fakeProvider{
		currentPositionFn: func(ctx context.Context) (Position, error) {
			return Position{Latitude: 1, Longitude: 2, AccuracyM: 3, At: time.Now().UTC()}, nil
		},
	}
	s := NewSampler(provider, Config{Interval: 5 * time.Millisecond, MaxAge: time.Nanosecond}, func(st Status) {
		select {
		case updates <- st:
		default:
		}
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Immediate sample plus at least one tick.
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no immediate sample")
	}
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no interval sample")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop on cancel")
	}
}

func TestSampler_InFlightGuardSkipsOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	provider := &fakeProvider{
		currentPositionFn: func(ctx context.Context) (Position, error) {
			calls.Add(1)
			close(started)
			<-release
			return Position{Latitude: 1, Longitude: 2, AccuracyM: 3}, nil
		},
	}
	s := NewSampler(provider, Config{MaxAge: time.Nanosecond}, nil, zap.NewNop())

	go s.sample(context.Background())
	<-started

	// A second cycle while the first is pending must not reach the
	// provider.
	s.sample(context.Background())
	assert.Equal(t, int32(1), calls.Load())

	close(release)
}
