package auth

import (
	"context"
	"net/http"
)

type contextKey string

const staffIDKey contextKey = "staff_id"

// StaffOnly guards refund, check-in and organizer routes. Authentication
// itself is an external collaborator; this middleware only verifies the
// bearer token it issued and puts the staff subject into the context.
func StaffOnly(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			staffID, err := VerifyStaffToken(tokenString, secret)
			if err != nil {
				http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), staffIDKey, staffID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffID extracts the verified staff subject in handlers.
func StaffID(ctx context.Context) string {
	if id, ok := ctx.Value(staffIDKey).(string); ok {
		return id
	}
	return ""
}
