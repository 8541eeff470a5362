// Package handler is the HTTP surface: the /api/v1 REST endpoints and the
// static frontend files behind them.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/megalosandros/game-server/internal/app"
)

// New builds the full request router. The tick endpoint only exists when the
// server runs without its own clock and an external driver advances time.
func New(application *app.Application, wwwRoot string, enableTick bool, log *zap.Logger) http.Handler {
	api := NewAPI(application, log)
	r := mux.NewRouter()

	// Anything under the maps prefix is a map lookup, so a bad id comes
	// back as 404 mapNotFound rather than 400.
	r.PathPrefix("/api/v1/maps").Methods(http.MethodGet, http.MethodHead).
		HandlerFunc(api.dispatchMaps)
	r.PathPrefix("/api/v1/maps").HandlerFunc(api.methodNotAllowed("GET, HEAD"))

	r.HandleFunc("/api/v1/game/join", api.handleJoin).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/game/join", api.methodNotAllowed("POST"))

	r.HandleFunc("/api/v1/game/players", api.handlePlayers).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/api/v1/game/players", api.methodNotAllowed("GET, HEAD"))

	r.HandleFunc("/api/v1/game/state", api.handleState).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/api/v1/game/state", api.methodNotAllowed("GET, HEAD"))

	r.HandleFunc("/api/v1/game/player/action", api.handleAction).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/game/player/action", api.methodNotAllowed("POST"))

	r.HandleFunc("/api/v1/game/records", api.handleRecords).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/api/v1/game/records", api.methodNotAllowed("GET, HEAD"))

	if enableTick {
		r.HandleFunc("/api/v1/game/tick", api.handleTick).Methods(http.MethodPost)
		r.HandleFunc("/api/v1/game/tick", api.methodNotAllowed("POST"))
	}

	r.PathPrefix("/api/").HandlerFunc(api.handleUnknown)

	r.PathPrefix("/").Handler(NewFileServer(wwwRoot))

	r.Use(requestLogger(log))
	return r
}

func (a *API) dispatchMaps(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/maps")
	if rest == "" || rest == "/" {
		a.handleMaps(w, r)
		return
	}
	if !strings.HasPrefix(rest, "/") {
		a.handleUnknown(w, r)
		return
	}
	a.handleMap(w, r, rest[1:])
}

func (a *API) methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		a.respondError(w, http.StatusMethodNotAllowed, "invalidMethod", "Requested method not allowed")
	}
}

func (a *API) handleUnknown(w http.ResponseWriter, r *http.Request) {
	a.respondError(w, http.StatusBadRequest, "badRequest", "Bad request")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(started)),
			)
		})
	}
}
