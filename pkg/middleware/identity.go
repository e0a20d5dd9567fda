package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// MemberIDKey is the context key for the acting member's id
	MemberIDKey ContextKey = "member_id"
)

// MemberIdentity propagates the acting member from the X-Member-ID header
// into the request context. The core treats the value as opaque; whoever
// fronts this API is responsible for authenticating it.
func MemberIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-Member-ID"); raw != "" {
			if memberID, err := uuid.Parse(raw); err == nil {
				ctx := context.WithValue(r.Context(), MemberIDKey, memberID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetMemberID extracts the acting member's id from the request context.
func GetMemberID(ctx context.Context) (uuid.UUID, bool) {
	memberID, ok := ctx.Value(MemberIDKey).(uuid.UUID)
	return memberID, ok
}
