package server

import (
	"context"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "userId"

// identityHeaders are checked in order; reverse proxies set one of them
// after authenticating the caller.
var identityHeaders = []string{"X-Auth-User", "X-Forwarded-User", "Remote-User"}

func (s *Server) extractUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var userID string
		for _, h := range identityHeaders {
			if userID = r.Header.Get(h); userID != "" {
				break
			}
		}

		if userID == "" && s.devUser != "" {
			userID = s.devUser
			s.logger.Warn("no auth header, using dev user", "user", userID)
		}

		if userID == "" {
			s.logger.Debug("authentication failed: no user header", "path", r.URL.Path)
			respondError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user for r, or "".
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
