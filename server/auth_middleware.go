package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
	// ContextKeyClaims stores the parsed *token.Claims
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth validates the Bearer access token and loads its user. Any
// failure is a 401, which is what makes the client refresh.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "Authentication credentials were not provided.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				writeUnauthorized(w, "Invalid Authorization header format.")
				return
			}

			claims, err := s.issuer.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				s.logger.Debug().Err(err).Msg("rejected access token")
				writeUnauthorized(w, "Given token not valid for any token type")
				return
			}

			user, err := s.users.GetByID(claims.UserID)
			if err != nil || user.Blocked {
				writeUnauthorized(w, "User not found or inactive.")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireModule lets the request through only when the user's role may use
// module. Chain it after RequireAuth.
func (s *Server) RequireModule(module permissions.ModuleKey) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := userFromContext(r.Context())
			if user == nil || !permissions.CanAccess(user.Role, module) {
				writeForbidden(w)
				return
			}
			next(w, r)
		}
	}
}

// RequireStaff rejects citizens. Chain it after RequireAuth.
func (s *Server) RequireStaff() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !isStaff(userFromContext(r.Context())) {
				writeForbidden(w)
				return
			}
			next(w, r)
		}
	}
}

func userFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(ContextKeyUser).(*users.User)
	return u
}

func isStaff(u *users.User) bool {
	return u != nil && u.Role.Valid() && u.Role != permissions.RoleCitizen
}
