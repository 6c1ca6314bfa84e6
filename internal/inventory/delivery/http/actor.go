package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	ActorIDKey       contextKey = "actor_id"
	actorVerifiedKey contextKey = "actor_verified"
)

// ActorHeader carries the caller identity when no bearer token is sent
const ActorHeader = "X-Actor-ID"

// ActorMiddleware resolves who is calling. A bearer token, when a secret is
// configured, must be a valid HS256 JWT and its subject becomes the actor.
// Otherwise the X-Actor-ID header is used.
func ActorMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := r.Header.Get(ActorHeader)
			verified := false

			if authHeader := r.Header.Get("Authorization"); authHeader != "" && len(secret) > 0 {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Invalid authorization header format"})
					return
				}
				subject, err := subjectOf(parts[1], secret)
				if err != nil {
					respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Invalid token"})
					return
				}
				actor, verified = subject, subject != ""
			}

			if actor != "" {
				ctx := context.WithValue(r.Context(), ActorIDKey, actor)
				if verified {
					ctx = context.WithValue(ctx, actorVerifiedKey, true)
				}
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func subjectOf(token string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	return parsed.Claims.GetSubject()
}

// ActorFromContext returns the resolved actor, or "" when anonymous
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorIDKey).(string)
	return actor
}

// actorFor resolves the actor of a write: a verified token subject wins,
// then an actor named in the request body, then the X-Actor-ID header
func actorFor(r *http.Request, fromBody string) string {
	if verified, _ := r.Context().Value(actorVerifiedKey).(bool); verified {
		return ActorFromContext(r.Context())
	}
	if fromBody != "" {
		return fromBody
	}
	return ActorFromContext(r.Context())
}
