package server

import (
	"net/http"
	"net/mail"

	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/users"
)

// publicUser is the user shape returned by the auth endpoints.
func publicUser(u *users.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"email":       u.Email,
		"phone":       u.Phone,
		"national_id": u.NationalID,
		"role":        u.Role,
	}
}

// LoginHandler accepts {identifier, password}. The identifier may be the
// username, email, phone or national id.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}

		identifier := stringField(body, "identifier")
		password, _ := body["password"].(string)
		details := fieldErrors{}
		if identifier == "" {
			details.add("identifier", "This field is required.")
		}
		if password == "" {
			details.add("password", "This field is required.")
		}
		if len(details) > 0 {
			writeValidation(w, details)
			return
		}

		user, err := s.users.GetByIdentifier(identifier)
		if err != nil || !users.CheckPasswordHash(password, user.PasswordHash) {
			writeUnauthorized(w, "Invalid credentials.")
			return
		}
		if user.Blocked {
			writeUnauthorized(w, "User account is disabled.")
			return
		}

		access, err := s.issuer.CreateAccessToken(user)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		refreshToken, err := s.refreshTokens.Create(user.ID)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}

		s.logger.Info().Str("user", user.Username).Str("role", string(user.Role)).Msg("login")
		writeJSON(w, http.StatusOK, map[string]any{
			"access":  access,
			"refresh": refreshToken,
			"user":    publicUser(user),
		})
	}
}

// RegisterHandler creates a CITIZEN account. All profile fields are
// required and every identifier must be unused.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}

		u := &users.User{
			Username:   stringField(body, "username"),
			FirstName:  stringField(body, "first_name"),
			LastName:   stringField(body, "last_name"),
			Email:      stringField(body, "email"),
			Phone:      stringField(body, "phone"),
			NationalID: stringField(body, "national_id"),
			Role:       permissions.DefaultRole,
			DateJoined: s.nowFunc().UTC(),
		}
		password, _ := body["password"].(string)

		details := fieldErrors{}
		for field, value := range map[string]string{
			"username":    u.Username,
			"first_name":  u.FirstName,
			"last_name":   u.LastName,
			"email":       u.Email,
			"phone":       u.Phone,
			"national_id": u.NationalID,
		} {
			if value == "" {
				details.add(field, "This field is required.")
			}
		}
		if u.Email != "" {
			if _, err := mail.ParseAddress(u.Email); err != nil {
				details.add("email", "Enter a valid email address.")
			}
		}
		if err := users.ValidatePasswordStrength(password); err != nil {
			details.add("password", err.Error())
		}
		for _, id := range u.Identifiers() {
			if existing, err := s.users.GetByIdentifier(id); err == nil && existing != nil {
				details.add("identifier", "A user with "+id+" already exists.")
			}
		}
		if len(details) > 0 {
			writeValidation(w, details)
			return
		}

		hash, err := users.HashPassword(password)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		u.PasswordHash = hash
		if err := s.users.Upsert(u); err != nil {
			writeStoreError(w, s.logger, err)
			return
		}

		s.logger.Info().Str("user", u.Username).Msg("registered")
		writeJSON(w, http.StatusCreated, publicUser(u))
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, publicUser(userFromContext(r.Context())))
	}
}

// RefreshHandler exchanges {refresh} for {access}. With rotation enabled
// the answer carries a new refresh token too.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		refreshToken := stringField(body, "refresh")
		if refreshToken == "" {
			writeValidation(w, fieldErrors{"refresh": {"This field is required."}})
			return
		}

		if s.rotateRefresh {
			next, old, err := s.refreshTokens.Rotate(refreshToken)
			if err != nil {
				writeUnauthorized(w, "Token is invalid or expired")
				return
			}
			s.respondRefreshed(w, old.UserID, next)
			return
		}

		stored, err := s.refreshTokens.Validate(refreshToken)
		if err != nil {
			writeUnauthorized(w, "Token is invalid or expired")
			return
		}
		s.respondRefreshed(w, stored.UserID, "")
	}
}

func (s *Server) respondRefreshed(w http.ResponseWriter, userID, rotated string) {
	user, err := s.users.GetByID(userID)
	if err != nil || user.Blocked {
		writeUnauthorized(w, "User not found or inactive.")
		return
	}
	access, err := s.issuer.CreateAccessToken(user)
	if err != nil {
		writeStoreError(w, s.logger, errors.Wrapf(err, "refresh"))
		return
	}
	resp := map[string]any{"access": access}
	if rotated != "" {
		resp["refresh"] = rotated
	}
	writeJSON(w, http.StatusOK, resp)
}
