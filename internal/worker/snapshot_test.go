package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/vaultshare/internal/domain"
	"github.com/mtlprog/vaultshare/internal/snapshot"
)

type mockSnapshotGenerator struct {
	callCount atomic.Int32
	err       error
}

func (m *mockSnapshotGenerator) Generate(_ context.Context, positions []domain.TrackedPosition) (snapshot.Run, error) {
	m.callCount.Add(1)
	if m.err != nil {
		return snapshot.Run{}, m.err
	}
	return snapshot.Run{
		ID:         uuid.New(),
		Valuations: make([]domain.PositionValuation, len(positions)),
	}, nil
}

type mockHook struct {
	callCount atomic.Int32
	lastLen   atomic.Int32
}

func (m *mockHook) Export(_ context.Context, valuations []domain.PositionValuation) error {
	m.callCount.Add(1)
	m.lastLen.Store(int32(len(valuations)))
	return nil
}

var workerPositions = []domain.TrackedPosition{{Vault: "v", Wallet: "w"}}

func TestSnapshotWorkerRunsAndShutdown(t *testing.T) {
	gen := &mockSnapshotGenerator{}
	hook := &mockHook{}
	w := NewSnapshotWorker(gen, workerPositions, "@every 1h", hook)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := gen.callCount.Load(); got != 1 {
		t.Errorf("generate calls = %d, want 1", got)
	}
	if got := hook.callCount.Load(); got != 1 {
		t.Errorf("hook calls = %d, want 1", got)
	}
	if got := hook.lastLen.Load(); got != 1 {
		t.Errorf("hook received %d valuations, want 1", got)
	}
}

func TestSnapshotWorkerSkipsHookOnFailure(t *testing.T) {
	gen := &mockSnapshotGenerator{err: errors.New("rpc down")}
	hook := &mockHook{}
	w := NewSnapshotWorker(gen, workerPositions, "@every 1h", hook)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hook.callCount.Load(); got != 0 {
		t.Errorf("hook calls = %d, want 0", got)
	}
}

func TestSnapshotWorkerNilHook(t *testing.T) {
	gen := &mockSnapshotGenerator{}
	w := NewSnapshotWorker(gen, workerPositions, "0 */5 * * * *", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gen.callCount.Load(); got != 1 {
		t.Errorf("generate calls = %d, want 1", got)
	}
}

func TestSnapshotWorkerInvalidSchedule(t *testing.T) {
	gen := &mockSnapshotGenerator{}
	w := NewSnapshotWorker(gen, workerPositions, "not a schedule", nil)

	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if got := gen.callCount.Load(); got != 0 {
		t.Errorf("generate calls = %d, want 0", got)
	}
}
