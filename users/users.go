package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/internal/utils"
	"github.com/jrsteele09/go-case-portal/permissions"
	"golang.org/x/crypto/bcrypt"
)

// User is a portal account as the backend describes it.
type User struct {
	ID           string           `json:"id,omitempty"`
	Username     string           `json:"username,omitempty"`
	FirstName    string           `json:"first_name,omitempty"`
	LastName     string           `json:"last_name,omitempty"`
	Email        string           `json:"email,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	NationalID   string           `json:"national_id,omitempty"`
	Role         permissions.Role `json:"role,omitempty"`
	PasswordHash string           `json:"-"` // never serialized
	DateJoined   time.Time        `json:"date_joined,omitempty"`
	Blocked      bool             `json:"blocked,omitempty"`
}

// FullName joins the first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Identifiers lists the values a user may sign in with.
func (u *User) Identifiers() []string {
	var ids []string
	for _, v := range []string{u.Username, u.Email, u.Phone, u.NationalID} {
		if v != "" {
			ids = append(ids, v)
		}
	}
	return ids
}

// UnmarshalJSON accepts the several shapes the backend uses for a user: a
// numeric or string id, and the role under "role", "role_key" or as the
// first entry of "roles".
func (u *User) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode user: %w", err)
	}
	*u = FromPayload(raw)
	return nil
}

// FromPayload builds a User from a decoded JSON object.
func FromPayload(raw map[string]any) User {
	u := User{
		ID:         idString(raw["id"]),
		Username:   apiclient.FirstString(raw, "username"),
		FirstName:  apiclient.FirstString(raw, "first_name"),
		LastName:   apiclient.FirstString(raw, "last_name"),
		Email:      apiclient.FirstString(raw, "email"),
		Phone:      apiclient.FirstString(raw, "phone"),
		NationalID: apiclient.FirstString(raw, "national_id"),
		Role:       RoleFromPayload(raw),
	}
	if joined := apiclient.FirstString(raw, "date_joined"); joined != "" {
		if t, err := time.Parse(time.RFC3339, joined); err == nil {
			u.DateJoined = t
		}
	}
	if blocked, ok := raw["blocked"].(bool); ok {
		u.Blocked = blocked
	}
	return u
}

// RoleFromPayload picks the user's role from "role", then "role_key", then
// the first string in "roles". It returns "" when none names a known role.
func RoleFromPayload(raw map[string]any) permissions.Role {
	name := apiclient.FirstString(raw, "role", "role_key")
	if name == "" {
		roles, _ := raw["roles"].([]any)
		if names := utils.ToStringSlice(roles); len(names) > 0 {
			name = names[0]
		}
	}
	role, _ := permissions.ParseRole(name)
	return role
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	return ""
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
