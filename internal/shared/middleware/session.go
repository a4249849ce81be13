package middleware

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

// UserIDKey is the request context key under which the session user id
// is stored.
const UserIDKey contextKey = "userID"

// Session resolves the authenticated user from the X-User-ID header set
// by the session layer in front of this service. Requests without a
// valid user id are rejected; authentication itself happens upstream.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
