// Package logger constructs the structured loggers used across the engine,
// storage, and server layers. Every component receives a *zap.SugaredLogger
// rather than configuring its own, so log output stays consistent regardless
// of which subsystem emits it.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-configured, sugared zap logger tagged with the
// calling service's name (e.g. "kvs-server", "kvs-client"). Every log line
// carries a "service" field so multi-process deployments can be filtered by
// component in a shared log aggregator.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "timestamp"

	log, err := cfg.Build()
	if err != nil {
		// zap's production config is static and self-validated; a build
		// failure here means the process environment cannot open stderr,
		// which no component of this store can recover from.
		panic(err)
	}

	return log.Sugar().With("service", service)
}
