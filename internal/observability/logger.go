package observability

import (
	"io"
	"log/slog"

	"github.com/tphakala/sxcat-go/internal/logging"
)

// Package-level logger for the telemetry endpoint
var (
	obsLogger   *slog.Logger
	obsLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	obsLevelVar.Set(slog.LevelInfo)

	obsLogger, _, err = logging.NewFileLogger("logs/telemetry.log", "telemetry", obsLevelVar)
	if err != nil {
		logging.Error("Failed to initialize telemetry file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: obsLevelVar})
		obsLogger = slog.New(fbHandler).With("service", "telemetry")
	}
}
