package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/auth"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// FailureCounter counts rejected authentication attempts by reason.
type FailureCounter func(reason string)

// AuthMiddleware creates an authentication middleware. The verified operator
// is attached to the request context with domain.WithActor.
func AuthMiddleware(verifier TokenVerifier, onFailure FailureCounter) func(http.Handler) http.Handler {
	if onFailure == nil {
		onFailure = func(string) {}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				onFailure("missing_header")
				writeMiddlewareError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				onFailure("malformed_header")
				writeMiddlewareError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				onFailure(reason)
				writeMiddlewareError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := domain.WithActor(r.Context(), claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates a middleware that checks the operator's role.
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromRequest(r)
			if !ok {
				writeMiddlewareError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			allowed := true
			switch minRole {
			case domain.RoleAdmin:
				allowed = actor.Role.CanAdminister()
			case domain.RoleOperator:
				allowed = actor.Role.CanWrite()
			case domain.RoleViewer:
				// All authenticated operators can view
			}

			if !allowed {
				writeMiddlewareError(w, http.StatusForbidden, domain.ErrInsufficientRole.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireWriteRole limits mutating methods to operators and admins while
// leaving reads open to every authenticated role.
func RequireWriteRole(next http.Handler) http.Handler {
	write := RequireRole(domain.RoleOperator)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			write.ServeHTTP(w, r)
		}
	})
}

// ActorFromRequest returns the authenticated operator of r, if any.
func ActorFromRequest(r *http.Request) (domain.Actor, bool) {
	actor := domain.ActorFromContext(r.Context())
	if actor == domain.SystemActor {
		return domain.Actor{}, false
	}
	return actor, true
}
