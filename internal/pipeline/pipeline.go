// Package pipeline sequences the stage A->B->C->D->E->(F) run: EDT,
// DistanceRidge, LocalThickness, CleanUp, and the optional Mask Trim. The
// driver owns every intermediate buffer and drops each one once its
// consumer has read it.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/localthickness/internal/cleanup"
	"github.com/MeKo-Tech/localthickness/internal/edt"
	"github.com/MeKo-Tech/localthickness/internal/ridge"
	"github.com/MeKo-Tech/localthickness/internal/thickness"
	"github.com/MeKo-Tech/localthickness/internal/trim"
	"github.com/MeKo-Tech/localthickness/internal/volume"
	"github.com/MeKo-Tech/localthickness/internal/worker"
)

// Result is the output of a full pipeline run.
type Result struct {
	Thickness    *volume.FloatVolume
	Stages       []worker.StageRecord
	TotalElapsed time.Duration
}

// Driver sequences the local-thickness stages against a fixed worker count
// and optional structured logger. Cancellation is only checked between
// stages; a stage already running is never interrupted mid-flight.
type Driver struct {
	Workers int
	Logger  *slog.Logger
}

// New returns a Driver with the given worker count (<=0 uses hardware
// concurrency) and an optional logger (nil disables stage logging).
func New(workers int, logger *slog.Logger) *Driver {
	return &Driver{Workers: worker.Count(workers), Logger: logger}
}

// Run executes EDT -> DistanceRidge -> LocalThickness -> CleanUp against
// input, then Mask Trim if cfg.MaskTrim is set. ctx is checked between
// stages; a canceled context aborts before the next stage starts and
// returns ctx.Err(), never a partial Result.
func (drv *Driver) Run(ctx context.Context, input *volume.BinaryVolume, cfg volume.Config) (*Result, error) {
	if input == nil {
		return nil, volume.ErrNullInput
	}
	tracker := worker.NewStageTracker(drv.Logger)

	edtOut, err := drv.runStage(ctx, tracker, "edt", len(input.Bytes), func() (*volume.FloatVolume, error) {
		return edt.Compute(input, cfg, drv.Workers)
	})
	if err != nil {
		return nil, err
	}

	ridgeOut, err := drv.runStage(ctx, tracker, "ridge", len(edtOut.Values), func() (*volume.FloatVolume, error) {
		return ridge.Compute(edtOut, drv.Workers)
	})
	if err != nil {
		return nil, err
	}
	edtOut = nil

	thicknessOut, err := drv.runStage(ctx, tracker, "thickness", len(ridgeOut.Values), func() (*volume.FloatVolume, error) {
		return thickness.Compute(ridgeOut, drv.Workers)
	})
	if err != nil {
		return nil, err
	}
	ridgeOut = nil

	cleanOut, err := drv.runStage(ctx, tracker, "cleanup", len(thicknessOut.Values), func() (*volume.FloatVolume, error) {
		return cleanup.Compute(thicknessOut, drv.Workers)
	})
	if err != nil {
		return nil, err
	}
	thicknessOut = nil

	final := cleanOut
	if cfg.MaskTrim {
		if err := drv.checkContext(ctx); err != nil {
			return nil, err
		}
		final, err = drv.runStage(ctx, tracker, "trim", len(cleanOut.Values), func() (*volume.FloatVolume, error) {
			return trim.Compute(cleanOut, input, cfg, drv.Workers)
		})
		if err != nil {
			return nil, err
		}
	}

	return &Result{Thickness: final, Stages: tracker.Stages(), TotalElapsed: tracker.TotalElapsed()}, nil
}

// runStage checks ctx before invoking fn, times the call, and records it on
// tracker. voxels is purely informational (logged as the stage's size).
func (drv *Driver) runStage(ctx context.Context, tracker *worker.StageTracker, name string, voxels int, fn func() (*volume.FloatVolume, error)) (*volume.FloatVolume, error) {
	if err := drv.checkContext(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := fn()
	if err != nil {
		return nil, err
	}
	tracker.Record(name, time.Since(start), voxels)
	return out, nil
}

func (drv *Driver) checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
