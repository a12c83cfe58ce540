package tiffvis

import (
	"time"

	"github.com/sirupsen/logrus"
)

// diag is nil until the host opts in; the package performs no logging on
// its own and has no init-time side effects.
var diag logrus.FieldLogger

// EnableDiagnostics installs a logger for decode timing and sizing
// diagnostics. The host calls it once during startup, before the first
// decode; passing nil disables diagnostics again. It is not synchronized
// against concurrent decodes.
func EnableDiagnostics(l logrus.FieldLogger) {
	diag = l
}

func logTiming(total, read time.Duration, res *Result) {
	if diag == nil {
		return
	}
	diag.WithFields(logrus.Fields{
		"total_ms":    float64(total.Microseconds()) / 1000.0,
		"metadata_ms": float64((total - read).Microseconds()) / 1000.0,
		"read_ms":     float64(read.Microseconds()) / 1000.0,
		"width":       res.Width,
		"height":      res.Height,
		"channels":    res.Channels,
		"format":      uint32(res.SampleFormat),
		"bytes":       len(res.Data),
	}).Debug("tiff decode")
}
