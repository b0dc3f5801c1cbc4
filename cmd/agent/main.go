package main

import (
	"flag"

	"geopunch/internal/app"
	"geopunch/internal/bootstrap"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	punchOnce := flag.Bool("punch", false, "submit one punch and exit instead of watching")
	reason := flag.String("reason", "", "justification when punching outside the geofence")
	flag.Parse()

	_ = godotenv.Load()
	logger, err := bootstrap.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := app.RunAgent(app.AgentOptions{
		PunchOnce: *punchOnce,
		Reason:    *reason,
	}); err != nil {
		logger.Fatal("run agent failed", zap.Error(err))
	}
}
