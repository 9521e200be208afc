package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/mtlprog/vaultshare/internal/domain"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, valuer PositionValuer, snapshots SnapshotStore, positions []domain.TrackedPosition, adminAPIKey string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewMux(NewHandler(valuer, snapshots, positions), adminAPIKey),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers the API routes. The generate endpoint requires a bearer token when adminAPIKey is set.
func NewMux(handler *Handler, adminAPIKey string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/vaults/{vault}/positions/{wallet}", handler.GetPosition)
	mux.HandleFunc("GET /api/v1/vaults/{vault}/positions/{wallet}/snapshots/latest", handler.GetLatestSnapshot)
	mux.HandleFunc("GET /api/v1/vaults/{vault}/positions/{wallet}/snapshots", handler.ListSnapshots)

	generateHandler := http.HandlerFunc(handler.GenerateSnapshot)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/snapshots/generate", requireAuth(adminAPIKey, generateHandler))
	} else {
		mux.Handle("POST /api/v1/snapshots/generate", generateHandler)
	}

	return mux
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
