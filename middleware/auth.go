package middleware

import (
	"context"
	"net/http"
	"strconv"

	"Bingearr/services"
)

type contextKey string

const accountKey contextKey = "account"

// AccountID returns the authenticated account id stored by RequireAuth.
func AccountID(r *http.Request) int {
	id, _ := r.Context().Value(accountKey).(int)
	return id
}

// parseAccountID converts the session value to int; gorilla/sessions stores
// whatever type was put in, so tolerate the common ones.
func parseAccountID(v interface{}) (int, error) {
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, strconv.ErrSyntax
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := services.GetSession(r)
		if err != nil {
			unauthorized(w)
			return
		}

		raw, ok := session.Values["account_id"]
		if !ok {
			unauthorized(w)
			return
		}

		accountID, err := parseAccountID(raw)
		if err != nil {
			unauthorized(w)
			return
		}

		// Verify the account still exists.
		if _, err := services.GetAccountByID(accountID); err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin wraps RequireAuth and additionally checks the admin flag.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := services.GetAccountByID(AccountID(r))
		if err != nil || !account.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	}))
}
