// Package ringlog constructs the structured logger used by the cmd/
// binaries. The core library (internal/shmring, ringproducer, ringconsumer)
// does no logging of its own — it reports failures through error returns —
// this is purely the ambient CLI logging stack (SPEC_FULL.md §4.6).
//
// Grounded on Aidin1998-finalex/services/marketfeeds/common/logger/logger.go.
package ringlog

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// New builds a *slog.Logger backed by zap. In production mode it uses
// zap's JSON encoder at Info level; otherwise a human-readable development
// encoder at Debug level. The returned func flushes the underlying zap
// core's buffers and should be deferred by the caller.
func New(isProd bool) (*slog.Logger, func() error) {
	var zcore *zap.Logger
	var err error
	if isProd {
		zcore, err = zap.NewProduction()
	} else {
		zcore, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("ringlog: couldn't build zap core: " + err.Error())
	}

	handler := zapslog.NewHandler(zcore.Core())
	logger := slog.New(handler)
	return logger, zcore.Sync
}
