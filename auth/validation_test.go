package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-case-portal/auth"
	"github.com/stretchr/testify/require"
)

func TestValidateLogin(t *testing.T) {
	v := auth.NewValidator()
	require.NoError(t, v.ValidateLogin(auth.LoginRequest{Identifier: "0900123", Password: "123456"}))
	require.ErrorIs(t, v.ValidateLogin(auth.LoginRequest{Password: "123456"}), auth.MissingIdentifierErr)
	require.ErrorIs(t, v.ValidateLogin(auth.LoginRequest{Identifier: "x", Password: "12345"}), auth.ShortPasswordErr)
}

func TestValidateRegistration(t *testing.T) {
	v := auth.NewValidator()
	require.NoError(t, v.ValidateRegistration(validRegistration()))

	tests := []struct {
		name   string
		modify func(r *auth.RegisterRequest)
		want   error
	}{
		{"short username", func(r *auth.RegisterRequest) { r.Username = "jd" }, auth.ShortUsernameErr},
		{"missing last name", func(r *auth.RegisterRequest) { r.LastName = " " }, auth.MissingNameErr},
		{"bad email", func(r *auth.RegisterRequest) { r.Email = "jane.example.com" }, auth.InvalidEmailErr},
		{"email with display name", func(r *auth.RegisterRequest) { r.Email = "Jane <jane@example.com>" }, auth.InvalidEmailErr},
		{"short phone", func(r *auth.RegisterRequest) { r.Phone = "09" }, auth.InvalidPhoneErr},
		{"short national id", func(r *auth.RegisterRequest) { r.NationalID = "1" }, auth.InvalidNationalIDErr},
		{"short password", func(r *auth.RegisterRequest) { r.Password, r.ConfirmPassword = "123", "123" }, auth.ShortPasswordErr},
		{"mismatch", func(r *auth.RegisterRequest) { r.ConfirmPassword = "Other123" }, auth.PasswordMismatchErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.modify(&req)
			require.ErrorIs(t, v.ValidateRegistration(req), tt.want)
		})
	}

	req := validRegistration()
	req.Username, req.Phone = "", ""
	err := v.ValidateRegistration(req)
	require.ErrorIs(t, err, auth.ShortUsernameErr)
	require.ErrorIs(t, err, auth.InvalidPhoneErr)
}
