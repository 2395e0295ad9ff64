package handlers

import "net/http"

type favoriteRequest struct {
	ProfileID int `json:"profile_id"`
	TMDBID    int `json:"tmdb_id"`
	ID        int `json:"id"`
}

func (a *API) FavoriteShow(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireProfile(w, r, req.ProfileID) {
		return
	}

	show, err := a.Sync.FavoriteShow(r.Context(), req.ProfileID, req.TMDBID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, show)
}

func (a *API) UnfavoriteShow(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireProfile(w, r, req.ProfileID) {
		return
	}

	if err := a.Sync.UnfavoriteShow(r.Context(), req.ProfileID, req.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (a *API) FavoriteMovie(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireProfile(w, r, req.ProfileID) {
		return
	}

	movie, err := a.Sync.FavoriteMovie(r.Context(), req.ProfileID, req.TMDBID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movie)
}

func (a *API) UnfavoriteMovie(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireProfile(w, r, req.ProfileID) {
		return
	}

	if err := a.Sync.UnfavoriteMovie(r.Context(), req.ProfileID, req.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
