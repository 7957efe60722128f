package worker

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// StageRecord is one completed pipeline stage's timing and size.
type StageRecord struct {
	Name    string
	Elapsed time.Duration
	Voxels  int
}

// StageTracker records per-stage timing/voxel counts and logs a structured
// line per stage. Progress reporting is a driver/CLI concern, not a pipeline
// stage one, so no stage package imports this type directly — only the
// driver (internal/pipeline) uses it to narrate a run.
type StageTracker struct {
	logger *slog.Logger
	stages []StageRecord
}

// NewStageTracker creates a tracker that logs through logger. A nil logger
// disables logging but still accumulates StageRecords for Stages and
// TotalElapsed.
func NewStageTracker(logger *slog.Logger) *StageTracker {
	return &StageTracker{logger: logger}
}

// Record appends a completed stage and logs it.
func (t *StageTracker) Record(name string, elapsed time.Duration, voxels int) {
	t.stages = append(t.stages, StageRecord{Name: name, Elapsed: elapsed, Voxels: voxels})
	if t.logger != nil {
		t.logger.Info("stage complete",
			slog.String("stage", name),
			slog.Duration("elapsed", elapsed),
			slog.String("voxels", humanize.Comma(int64(voxels))),
		)
	}
}

// Stages returns the recorded stages in completion order.
func (t *StageTracker) Stages() []StageRecord {
	return t.stages
}

// TotalElapsed sums every recorded stage's duration.
func (t *StageTracker) TotalElapsed() time.Duration {
	var total time.Duration
	for _, s := range t.stages {
		total += s.Elapsed
	}
	return total
}
