package api

import (
	"context"
	"net/http"

	"skillboard/internal/state"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "skillboard_session"

type sessionKey struct{}

// sessionMiddleware makes sure every request carries a session id
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil && state.ValidSessionID(c.Value) {
			id = c.Value
		} else {
			id = state.NewSessionID()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
