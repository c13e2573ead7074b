package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-case-portal/auth"
	"github.com/jrsteele09/go-case-portal/credentials"
	"github.com/jrsteele09/go-case-portal/guard"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/spf13/pflag"
)

func flagSet(name string) *pflag.FlagSet {
	return pflag.NewFlagSet("pcs "+name, pflag.ContinueOnError)
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flagSet("login")
	identifier := fs.StringP("identifier", "i", "", "username, email, phone or national id")
	password := fs.StringP("password", "p", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *identifier == "" && fs.NArg() > 0 {
		*identifier = fs.Arg(0)
	}

	res, err := a.auth.Login(ctx, auth.LoginRequest{Identifier: *identifier, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", res.User.Username, res.Role)
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := flagSet("register")
	var req auth.RegisterRequest
	fs.StringVar(&req.Username, "username", "", "username")
	fs.StringVar(&req.FirstName, "first-name", "", "first name")
	fs.StringVar(&req.LastName, "last-name", "", "last name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	fs.StringVar(&req.NationalID, "national-id", "", "national id")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.ConfirmPassword, "confirm-password", "", "password again")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	if res.SignedIn {
		fmt.Fprintf(a.out, "Registered and signed in as %s (%s)\n", res.User.Username, res.Role)
		return nil
	}
	fmt.Fprintf(a.out, "Registered %s. Sign in with: pcs login -i %s\n", res.User.Username, res.User.Username)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	a.signingOut = true
	defer func() { a.signingOut = false }()
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runStatus(_ context.Context, a *app, _ []string) error {
	st := a.session.State()
	if !st.IsAuthenticated {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	w := a.table()
	fmt.Fprintf(w, "Role\t%s\n", st.Role)
	if claims, err := credentials.Inspect(st.AccessToken); err == nil {
		fmt.Fprintf(w, "User id\t%s\n", claims.UserID)
		if !claims.ExpiresAt.IsZero() {
			state := "valid"
			if claims.Expired(time.Now()) {
				state = "expired, refreshed on next request"
			}
			fmt.Fprintf(w, "Access token\t%s (until %s)\n", state, claims.ExpiresAt.Local().Format(time.DateTime))
		}
	}
	return w.Flush()
}

func runMe(ctx context.Context, a *app, _ []string) error {
	u, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintf(w, "Username\t%s\n", u.Username)
	fmt.Fprintf(w, "Name\t%s\n", u.FullName())
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Phone\t%s\n", u.Phone)
	fmt.Fprintf(w, "National id\t%s\n", u.NationalID)
	fmt.Fprintf(w, "Role\t%s\n", u.Role)
	return w.Flush()
}

// runRole prints the active role, or switches to the role given.
func runRole(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		if !a.session.IsAuthenticated() {
			return errors.ErrSessionRequired
		}
		fmt.Fprintln(a.out, a.session.Role())
		return nil
	}
	role, ok := permissions.ParseRole(strings.Join(args, " "))
	if !ok {
		return fmt.Errorf("%q: %w", strings.Join(args, " "), errors.ErrUnknownRole)
	}
	if err := a.session.SetRole(ctx, role); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Active role is now %s\n", role)
	return nil
}

func runModules(_ context.Context, a *app, _ []string) error {
	if !a.session.IsAuthenticated() {
		return errors.ErrSessionRequired
	}
	w := a.table()
	for _, m := range permissions.ModulesFor(a.session.Role()) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Title, m.Route, m.Description)
	}
	return w.Flush()
}

// runOpen asks the route guard about a portal location and prints where
// the user ends up.
func runOpen(_ context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pcs open <path>: %w", errors.ErrInvalidRequest)
	}
	d := a.guard.CheckPath(a.session, args[0])
	switch d.Reason {
	case guard.ReasonNone:
		fmt.Fprintf(a.out, "allowed: %s\n", args[0])
	case guard.ReasonUnauthenticated:
		fmt.Fprintf(a.out, "sign in first: %s\n", d.Location)
	case guard.ReasonForbidden:
		fmt.Fprintf(a.out, "%s may not open %s, redirected to %s\n", a.session.Role(), d.From, d.Location)
	}
	return nil
}
