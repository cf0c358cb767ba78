package studio

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	// UserEmailHeader is set by Identity-Aware Proxy in front of the studio.
	UserEmailHeader = "X-Goog-Authenticated-User-Email"
	// AnonymousEmail is used when no proxy identity is present, e.g. locally.
	AnonymousEmail = "anonymous@google.com"

	SessionCookie = "session_id"

	iapEmailPrefix = "accounts.google.com:"
)

type contextKey string

const (
	userEmailKey contextKey = "user_email"
	sessionIDKey contextKey = "session_id"
)

// UserEmail returns the caller's email stored by RequestContext.
func UserEmail(ctx context.Context) string {
	if v, ok := ctx.Value(userEmailKey).(string); ok {
		return v
	}
	return AnonymousEmail
}

// SessionID returns the session id stored by RequestContext.
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithIdentity returns a context carrying the user email and session id.
func WithIdentity(ctx context.Context, email, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userEmailKey, email)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func userEmailFromHeader(r *http.Request) string {
	email := r.Header.Get(UserEmailHeader)
	if email == "" {
		return AnonymousEmail
	}
	if strings.HasPrefix(email, iapEmailPrefix) {
		parts := strings.Split(email, ":")
		email = parts[len(parts)-1]
	}
	return email
}

func sessionIDFromCookie(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return uuid.NewString()
}

// RequestContext resolves the user and session for every request, stores them
// in the request context and touches the session's state. Responses carry the
// default content security policy and the session cookie.
func RequestContext(sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := userEmailFromHeader(r)
			sessionID := sessionIDFromCookie(r)

			if sessions != nil {
				sessions.Touch(sessionID, email)
			}

			w.Header().Set("Content-Security-Policy", DefaultSecurityPolicy.Header())
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), email, sessionID)))
		})
	}
}
