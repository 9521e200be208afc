package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mtlprog/vaultshare/internal/domain"
	"github.com/mtlprog/vaultshare/internal/ledger"
	"github.com/mtlprog/vaultshare/internal/position"
	"github.com/mtlprog/vaultshare/internal/snapshot"
	"github.com/mtlprog/vaultshare/internal/vault"
)

// PositionValuer values a single position against live ledger state.
type PositionValuer interface {
	Value(ctx context.Context, p domain.TrackedPosition) (domain.PositionValuation, error)
}

// SnapshotStore generates and reads stored position snapshots.
type SnapshotStore interface {
	Generate(ctx context.Context, positions []domain.TrackedPosition) (snapshot.Run, error)
	GetLatest(ctx context.Context, vault, wallet string) (*snapshot.Snapshot, error)
	List(ctx context.Context, vault, wallet string, limit int) ([]snapshot.Snapshot, error)
}

// Handler provides HTTP endpoints for the valuation API.
type Handler struct {
	valuer    PositionValuer
	snapshots SnapshotStore
	positions []domain.TrackedPosition
}

// NewHandler creates a new API handler.
func NewHandler(valuer PositionValuer, snapshots SnapshotStore, positions []domain.TrackedPosition) *Handler {
	return &Handler{valuer: valuer, snapshots: snapshots, positions: positions}
}

// positionFromPath reads and validates the vault and wallet path values.
func positionFromPath(w http.ResponseWriter, r *http.Request) (domain.TrackedPosition, bool) {
	p := domain.TrackedPosition{Vault: r.PathValue("vault"), Wallet: r.PathValue("wallet")}
	if _, _, err := position.ParseKeys(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.TrackedPosition{}, false
	}
	return p, true
}

// GetPosition handles GET /api/v1/vaults/{vault}/positions/{wallet}.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	p, ok := positionFromPath(w, r)
	if !ok {
		return
	}

	v, err := h.valuer.Value(r.Context(), p)
	if err != nil {
		status, msg := valuationStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("failed to value position", "vault", p.Vault, "wallet", p.Wallet, "error", err)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// GetLatestSnapshot handles GET /api/v1/vaults/{vault}/positions/{wallet}/snapshots/latest.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	p, ok := positionFromPath(w, r)
	if !ok {
		return
	}

	s, err := h.snapshots.GetLatest(r.Context(), p.Vault, p.Wallet)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshots found")
			return
		}
		slog.Error("failed to get latest snapshot", "vault", p.Vault, "wallet", p.Wallet, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListSnapshots handles GET /api/v1/vaults/{vault}/positions/{wallet}/snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	p, ok := positionFromPath(w, r)
	if !ok {
		return
	}

	limit := snapshot.DefaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	snapshots, err := h.snapshots.List(r.Context(), p.Vault, p.Wallet, snapshot.ClampLimit(limit))
	if err != nil {
		slog.Error("failed to list snapshots", "vault", p.Vault, "wallet", p.Wallet, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if snapshots == nil {
		snapshots = []snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// GenerateSnapshot handles POST /api/v1/snapshots/generate.
func (h *Handler) GenerateSnapshot(w http.ResponseWriter, r *http.Request) {
	run, err := h.snapshots.Generate(r.Context(), h.positions)
	if err != nil {
		if errors.Is(err, snapshot.ErrNoPositions) {
			writeError(w, http.StatusConflict, "no positions configured")
			return
		}
		slog.Error("failed to generate snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate snapshot")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// valuationStatus maps a valuation failure to an HTTP status and client message.
func valuationStatus(err error) (int, string) {
	var rpcErr *ledger.RPCError
	switch {
	case errors.Is(err, position.ErrInvalidAddress):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, vault.ErrClockSkew):
		return http.StatusConflict, err.Error()
	case errors.Is(err, vault.ErrDecode), errors.Is(err, vault.ErrArithmeticOverflow):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &rpcErr):
		return http.StatusBadGateway, "ledger request failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
