package handlers

import (
	"fmt"
	"net/http"
)

type statusRequest struct {
	ProfileID int    `json:"profile_id"`
	ID        int    `json:"id"`
	Status    string `json:"status"`
	Recursive bool   `json:"recursive"`
}

func (a *API) readStatusRequest(w http.ResponseWriter, r *http.Request) (*statusRequest, bool) {
	var req statusRequest
	if !decode(w, r, &req) {
		return nil, false
	}
	if !requireProfile(w, r, req.ProfileID) {
		return nil, false
	}
	return &req, true
}

func (a *API) finishStatusChange(w http.ResponseWriter, err error, profileID int) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.Cache.Invalidate(fmt.Sprintf("profile:%d:*", profileID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (a *API) SetShowStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readStatusRequest(w, r)
	if !ok {
		return
	}
	status, ok := parseStatus(w, req.Status)
	if !ok {
		return
	}
	err := a.Statuses.SetShowStatus(r.Context(), req.ProfileID, req.ID, status, req.Recursive)
	a.finishStatusChange(w, err, req.ProfileID)
}

func (a *API) SetSeasonStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readStatusRequest(w, r)
	if !ok {
		return
	}
	status, ok := parseStatus(w, req.Status)
	if !ok {
		return
	}
	err := a.Statuses.SetSeasonStatus(r.Context(), req.ProfileID, req.ID, status, req.Recursive)
	a.finishStatusChange(w, err, req.ProfileID)
}

func (a *API) SetEpisodeStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readStatusRequest(w, r)
	if !ok {
		return
	}
	status, ok := parseStatus(w, req.Status)
	if !ok {
		return
	}
	err := a.Statuses.SetEpisodeStatus(r.Context(), req.ProfileID, req.ID, status)
	a.finishStatusChange(w, err, req.ProfileID)
}

func (a *API) SetMovieStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readStatusRequest(w, r)
	if !ok {
		return
	}
	status, ok := parseStatus(w, req.Status)
	if !ok {
		return
	}
	err := a.Statuses.SetMovieStatus(r.Context(), req.ProfileID, req.ID, status)
	a.finishStatusChange(w, err, req.ProfileID)
}
