package render

import (
	"voxelarray/internal/corelog"
	"voxelarray/internal/gfx"
)

// LogLoadingObserver reports save/load progress to the log, one line
// per tenth of completion. It implements gfx.LoadingObserver for
// builds without a UI overlay.
type LogLoadingObserver struct{}

type logLoading struct {
	label      string
	lastDecile int
}

// StartNew begins tracking one labeled operation.
func (LogLoadingObserver) StartNew(label string) gfx.Loading {
	corelog.Infof("Loading", "%s...", label)
	return &logLoading{label: label, lastDecile: -1}
}

// Refresh logs when progress crosses into a new tenth.
func (l *logLoading) Refresh(fraction float64) {
	decile := int(fraction * 10)
	if decile > l.lastDecile {
		l.lastDecile = decile
		corelog.Infof("Loading", "%s %d%%", l.label, int(fraction*100))
	}
}
