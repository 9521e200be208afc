package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mtlprog/vaultshare/internal/domain"
	"github.com/mtlprog/vaultshare/internal/position"
)

const (
	// DefaultListLimit is used when a list request carries no positive limit.
	DefaultListLimit = 30
	// MaxListLimit caps the number of snapshots returned by one list request.
	MaxListLimit = 365
)

// ErrNoPositions is returned when a run is requested with nothing to value.
var ErrNoPositions = errors.New("no positions to snapshot")

// ClampLimit normalizes a requested list size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// PositionValuer values a batch of tracked positions.
type PositionValuer interface {
	ValueMany(ctx context.Context, positions []domain.TrackedPosition) ([]domain.PositionValuation, []position.PositionError)
}

// Run is the outcome of one snapshot generation.
type Run struct {
	ID         uuid.UUID                  `json:"runId"`
	Valuations []domain.PositionValuation `json:"valuations"`
	Failed     int                        `json:"failed"`
}

// Service manages snapshot generation and retrieval.
type Service struct {
	valuer PositionValuer
	repo   Repository
}

// NewService creates a new snapshot Service.
func NewService(valuer PositionValuer, repo Repository) *Service {
	return &Service{valuer: valuer, repo: repo}
}

// Generate values every position and stores the successful valuations under one run ID.
// It fails only when no valuation could be stored.
func (s *Service) Generate(ctx context.Context, positions []domain.TrackedPosition) (Run, error) {
	if len(positions) == 0 {
		return Run{}, ErrNoPositions
	}

	run := Run{ID: uuid.New()}
	valuations, posErrs := s.valuer.ValueMany(ctx, positions)
	run.Failed = len(posErrs)

	var saveErrs []error
	for _, v := range valuations {
		if err := s.repo.Save(ctx, run.ID, v); err != nil {
			slog.Error("failed to save snapshot", "run", run.ID, "vault", v.Vault, "wallet", v.Wallet, "error", err)
			saveErrs = append(saveErrs, err)
			run.Failed++
			continue
		}
		run.Valuations = append(run.Valuations, v)
	}

	if len(run.Valuations) == 0 {
		errs := append(lo.Map(posErrs, func(e position.PositionError, _ int) error { return e }), saveErrs...)
		return run, fmt.Errorf("generating snapshot run %s: %w", run.ID, errors.Join(errs...))
	}

	slog.Info("snapshot run stored", "run", run.ID, "stored", len(run.Valuations), "failed", run.Failed)
	return run, nil
}

// GetLatest retrieves the most recent snapshot of a position.
func (s *Service) GetLatest(ctx context.Context, vault, wallet string) (*Snapshot, error) {
	return s.repo.GetLatest(ctx, vault, wallet)
}

// List retrieves recent snapshots of a position, newest first.
func (s *Service) List(ctx context.Context, vault, wallet string, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, vault, wallet, ClampLimit(limit))
}

// History returns the decoded valuations of a position, newest first.
// Rows whose payload cannot be decoded are skipped with a warning.
func (s *Service) History(ctx context.Context, vault, wallet string, limit int) ([]domain.PositionValuation, error) {
	snaps, err := s.List(ctx, vault, wallet, limit)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(snaps, func(snap Snapshot, _ int) (domain.PositionValuation, bool) {
		v, err := snap.Valuation()
		if err != nil {
			slog.Warn("skipping undecodable snapshot", "id", snap.ID, "error", err)
			return domain.PositionValuation{}, false
		}
		return v, true
	}), nil
}
