package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"geopunch/internal/geo"
	"geopunch/internal/gps"
	"geopunch/internal/punch"
	"geopunch/internal/punch/restclient"

	"go.uber.org/zap"
)

// AgentOptions selects what the agent does after startup: punch once
// and exit, or keep sampling and reporting.
type AgentOptions struct {
	PunchOnce bool
	Reason    string
}

// RunAgent wires a punch engine from the environment and either
// performs a single punch or watches the geofence until terminated.
func RunAgent(opts AgentOptions) error {
	logger := zap.L().Named("app.agent")

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	employeeID := os.Getenv("EMPLOYEE_ID")
	if employeeID == "" {
		return fmt.Errorf("EMPLOYEE_ID is required")
	}

	office := geo.Coordinate{
		Latitude:  envFloat("OFFICE_LAT", 0),
		Longitude: envFloat("OFFICE_LON", 0),
	}

	var provider gps.Provider
	if os.Getenv("AGENT_LAT") != "" {
		provider = gps.StaticProvider{Position: gps.Position{
			Latitude:  envFloat("AGENT_LAT", 0),
			Longitude: envFloat("AGENT_LON", 0),
			AccuracyM: envFloat("AGENT_ACCURACY_M", 10),
		}}
	}

	client := restclient.New(baseURL, os.Getenv("API_TOKEN"))
	engine := punch.NewEngine(punch.EngineConfig{
		Office:   office,
		RadiusM:  envFloat("GEOFENCE_RADIUS_M", 0),
		UserID:   employeeID,
		Provider: provider,
		Client:   client,
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.PunchOnce {
		return punchOnce(ctx, engine, opts.Reason, logger)
	}

	go engine.Run(ctx)
	go watchSnapshots(ctx, engine, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("agent shutting down")
	cancel()
	return nil
}

func punchOnce(ctx context.Context, engine *punch.Engine, reason string, logger *zap.Logger) error {
	if err := engine.Status().Refetch(ctx); err != nil {
		return fmt.Errorf("fetch attendance status: %w", err)
	}

	snap := engine.SampleNow(ctx)
	logger.Info("sampled position",
		zap.String("distance", snap.FormattedDistance),
		zap.Bool("geofence_violation", snap.Violation),
	)

	if !engine.CanSubmit(reason) {
		if !snap.GPS.HasFix() {
			return punch.ErrLocationRequired
		}
		return punch.ErrReasonRequired
	}

	rec, err := engine.Submit(ctx, reason, nil)
	if err != nil {
		return err
	}

	logger.Info("punch accepted",
		zap.String("type", string(rec.Type)),
		zap.String("timestamp", rec.Timestamp),
		zap.String("status", string(engine.Status().Current())),
	)
	return nil
}

func watchSnapshots(ctx context.Context, engine *punch.Engine, logger *zap.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := engine.Snapshot()
			logger.Info("geofence snapshot",
				zap.String("distance", snap.FormattedDistance),
				zap.Bool("has_fix", snap.GPS.HasFix()),
				zap.Bool("geofence_violation", snap.Violation),
				zap.String("status", string(engine.Status().Current())),
			)
		}
	}
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
