package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"Bingearr/middleware"
	"Bingearr/services"
)

func (a *API) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := services.GetProfilesForAccount(middleware.AccountID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (a *API) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	profile, err := services.CreateProfile(middleware.AccountID(r), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (a *API) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile id")
		return
	}
	if err := services.DeleteProfile(middleware.AccountID(r), profileID); err != nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pathProfileID(w http.ResponseWriter, r *http.Request) (int, bool) {
	profileID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile id")
		return 0, false
	}
	if !requireProfile(w, r, profileID) {
		return 0, false
	}
	return profileID, true
}

// cached serves an aggregate from the TTL cache, falling back to load and
// fill on a miss.
func (a *API) cached(w http.ResponseWriter, key string, load func() (any, error)) {
	if body, ok := a.Cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	v, err := load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	a.Cache.Set(key, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (a *API) ProfileShows(w http.ResponseWriter, r *http.Request) {
	profileID, ok := pathProfileID(w, r)
	if !ok {
		return
	}
	a.cached(w, fmt.Sprintf("profile:%d:shows", profileID), func() (any, error) {
		return services.GetProfileShows(profileID)
	})
}

func (a *API) ProfileMovies(w http.ResponseWriter, r *http.Request) {
	profileID, ok := pathProfileID(w, r)
	if !ok {
		return
	}
	a.cached(w, fmt.Sprintf("profile:%d:movies", profileID), func() (any, error) {
		return services.GetProfileMovies(profileID)
	})
}
