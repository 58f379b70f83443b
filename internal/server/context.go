package server

import (
	"context"
	"net/http"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/services/iam"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// RequireUser authenticates the request via the gate and stores the user in
// the request context. Requests that fail authentication never reach the
// wrapped handler.
func RequireUser(gate *iam.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFrom returns the authenticated user stored by RequireUser.
func userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
