package app

import "log/slog"

const ServiceName = "admissions-service"

// Set with -ldflags "-X admissions-service/internal/app.Version=..." at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildAttrs describes the running binary for the startup log line.
func BuildAttrs() []any {
	return []any{
		slog.String("version", Version),
		slog.String("commit", GitCommit),
		slog.String("built", BuildTime),
	}
}
