// Package handlers is the thin JSON layer over the services. Handlers
// decode, authorize, delegate, and map the error taxonomy onto status codes;
// no domain logic lives here.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Bingearr/middleware"
	"Bingearr/models"
	"Bingearr/services/cache"
	"Bingearr/services/notify"
	"Bingearr/services/scheduler"
	"Bingearr/services/sync"
	"Bingearr/services/watchstatus"
	"Bingearr/shared/errs"
)

type API struct {
	Sync      *sync.Service
	Statuses  *watchstatus.Engine
	Scheduler *scheduler.Service
	Cache     *cache.Cache
	Hub       *notify.Hub
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", a.Login)
	mux.HandleFunc("POST /register", a.Register)
	mux.HandleFunc("POST /logout", a.Logout)

	mux.Handle("GET /ws", middleware.RequireAuth(http.HandlerFunc(a.Websocket)))

	mux.Handle("GET /profiles", middleware.RequireAuth(http.HandlerFunc(a.ListProfiles)))
	mux.Handle("POST /profiles", middleware.RequireAuth(http.HandlerFunc(a.CreateProfile)))
	mux.Handle("DELETE /profiles/{id}", middleware.RequireAuth(http.HandlerFunc(a.DeleteProfile)))
	mux.Handle("GET /profiles/{id}/shows", middleware.RequireAuth(http.HandlerFunc(a.ProfileShows)))
	mux.Handle("GET /profiles/{id}/movies", middleware.RequireAuth(http.HandlerFunc(a.ProfileMovies)))

	mux.Handle("POST /shows/favorite", middleware.RequireAuth(http.HandlerFunc(a.FavoriteShow)))
	mux.Handle("DELETE /shows/favorite", middleware.RequireAuth(http.HandlerFunc(a.UnfavoriteShow)))
	mux.Handle("POST /movies/favorite", middleware.RequireAuth(http.HandlerFunc(a.FavoriteMovie)))
	mux.Handle("DELETE /movies/favorite", middleware.RequireAuth(http.HandlerFunc(a.UnfavoriteMovie)))

	mux.Handle("PUT /watchstatus/show", middleware.RequireAuth(http.HandlerFunc(a.SetShowStatus)))
	mux.Handle("PUT /watchstatus/season", middleware.RequireAuth(http.HandlerFunc(a.SetSeasonStatus)))
	mux.Handle("PUT /watchstatus/episode", middleware.RequireAuth(http.HandlerFunc(a.SetEpisodeStatus)))
	mux.Handle("PUT /watchstatus/movie", middleware.RequireAuth(http.HandlerFunc(a.SetMovieStatus)))

	mux.Handle("POST /sync/shows", middleware.RequireAdmin(http.HandlerFunc(a.TriggerShowSync)))
	mux.Handle("POST /sync/movies", middleware.RequireAdmin(http.HandlerFunc(a.TriggerMovieSync)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFavorited):
		writeError(w, http.StatusConflict, "item is not favorited by this profile")
	case sync.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found upstream")
	default:
		var ext *errs.ExternalServiceError
		if errors.As(err, &ext) {
			slog.Error("Upstream failure", "error", err)
			writeError(w, http.StatusBadGateway, "catalog provider unavailable")
			return
		}
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseStatus(w http.ResponseWriter, raw string) (models.WatchStatus, bool) {
	status, err := models.ParseWatchStatus(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid watch status")
		return "", false
	}
	return status, true
}

type syncTrigger func(context.Context)

func runTrigger(w http.ResponseWriter, name string, fn syncTrigger) {
	// Detached from the request context: a manual pass should survive the
	// client hanging up.
	go fn(context.Background())
	slog.Info("Manual sync pass triggered", "kind", name)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (a *API) TriggerShowSync(w http.ResponseWriter, r *http.Request) {
	runTrigger(w, "shows", a.Scheduler.RunShowPass)
}

func (a *API) TriggerMovieSync(w http.ResponseWriter, r *http.Request) {
	runTrigger(w, "movies", a.Scheduler.RunMoviePass)
}
