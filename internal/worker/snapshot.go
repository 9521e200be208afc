package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/mtlprog/vaultshare/internal/domain"
	"github.com/mtlprog/vaultshare/internal/snapshot"
)

// SnapshotGenerator defines the interface for generating snapshot runs.
type SnapshotGenerator interface {
	Generate(ctx context.Context, positions []domain.TrackedPosition) (snapshot.Run, error)
}

// AfterSnapshotHook is called after each successful snapshot run.
type AfterSnapshotHook interface {
	Export(ctx context.Context, valuations []domain.PositionValuation) error
}

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// SnapshotWorker generates position snapshots on a cron schedule.
type SnapshotWorker struct {
	generator SnapshotGenerator
	positions []domain.TrackedPosition
	schedule  string
	hook      AfterSnapshotHook // optional
}

// NewSnapshotWorker creates a new SnapshotWorker with an optional post-generation hook.
func NewSnapshotWorker(generator SnapshotGenerator, positions []domain.TrackedPosition, schedule string, hook AfterSnapshotHook) *SnapshotWorker {
	return &SnapshotWorker{
		generator: generator,
		positions: positions,
		schedule:  schedule,
		hook:      hook,
	}
}

// runHook calls the post-generation hook if one is configured.
func (w *SnapshotWorker) runHook(ctx context.Context, valuations []domain.PositionValuation) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, valuations); err != nil {
		slog.Error("SnapshotWorker: export hook failed", "error", err)
	} else {
		slog.Info("SnapshotWorker: export hook completed")
	}
}

func (w *SnapshotWorker) generate(ctx context.Context, stage string) {
	run, err := w.generator.Generate(ctx, w.positions)
	if err != nil {
		slog.Error("SnapshotWorker: "+stage+" generation failed", "error", err)
		return
	}
	slog.Info("SnapshotWorker: "+stage+" generation completed", "run", run.ID, "stored", len(run.Valuations), "failed", run.Failed)
	w.runHook(ctx, run.Valuations)
}

// Run generates a snapshot immediately, then on every schedule tick until the context is cancelled.
// It returns an error only when the schedule cannot be parsed.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	sched, err := scheduleParser.Parse(w.schedule)
	if err != nil {
		return fmt.Errorf("parsing snapshot schedule %q: %w", w.schedule, err)
	}

	slog.Info("SnapshotWorker: starting", "schedule", w.schedule, "positions", len(w.positions))

	w.generate(ctx, "initial")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(sched, cron.FuncJob(func() { w.generate(ctx, "scheduled") }))
	c.Start()

	<-ctx.Done()
	slog.Info("SnapshotWorker: shutting down")
	<-c.Stop().Done()
	return nil
}
