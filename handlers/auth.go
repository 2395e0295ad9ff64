package handlers

import (
	"net/http"

	"Bingearr/middleware"
	"Bingearr/services"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if !decode(w, r, &creds) {
		return
	}

	account, err := services.AuthenticateAccount(creds.Username, creds.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session, err := services.GetSession(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	session.Values["account_id"] = account.ID
	if err := services.SaveSession(w, r, session); err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if !decode(w, r, &creds) {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	account, err := services.RegisterAccount(creds.Username, creds.Email, creds.Password)
	if err != nil {
		writeError(w, http.StatusConflict, "registration failed")
		return
	}

	session, err := services.GetSession(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	session.Values["account_id"] = account.ID
	if err := services.SaveSession(w, r, session); err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := services.GetSession(r)
	if err == nil {
		session.Options.MaxAge = -1
		services.SaveSession(w, r, session)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// requireProfile checks the profile belongs to the authenticated account.
func requireProfile(w http.ResponseWriter, r *http.Request, profileID int) bool {
	ok, err := services.ProfileBelongsToAccount(profileID, middleware.AccountID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if !ok {
		writeError(w, http.StatusForbidden, "profile does not belong to this account")
		return false
	}
	return true
}
