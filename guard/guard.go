package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-case-portal/permissions"
)

const (
	DefaultSignInPath  = "/auth"
	DefaultLandingPath = "/dashboard"
	NextParam          = "next"
)

// Session is the view of the signed-in user the guard needs.
// *sessions.Session satisfies it.
type Session interface {
	IsAuthenticated() bool
	Role() permissions.Role
}

// Requirement is what a location demands of the session.
type Requirement struct {
	roles  []permissions.Role
	module permissions.ModuleKey
}

// RequireAuthenticated admits any signed-in user.
func RequireAuthenticated() Requirement {
	return Requirement{}
}

// RequireRoles admits signed-in users holding one of roles.
func RequireRoles(roles ...permissions.Role) Requirement {
	return Requirement{roles: roles}
}

// RequireModule admits signed-in users whose role may use module.
func RequireModule(module permissions.ModuleKey) Requirement {
	return Requirement{module: module}
}

func (r Requirement) admits(role permissions.Role) bool {
	if len(r.roles) > 0 {
		found := false
		for _, allowed := range r.roles {
			if allowed == role {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.module != "" && !permissions.CanAccess(role, r.module) {
		return false
	}
	return true
}

// Reason says why a Decision redirects.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
)

// Decision is the outcome of a guard check. When Allowed is false the
// caller should go to Location instead.
type Decision struct {
	Allowed  bool
	Location string
	// From is the location originally asked for, kept so that sign-in can
	// return the user there.
	From   string
	Reason Reason
}

// Guard decides whether the current session may enter a location.
type Guard struct {
	signInPath  string
	landingPath string
	publicPaths []string
}

type Option func(*Guard)

func WithSignInPath(path string) Option {
	return func(g *Guard) {
		g.signInPath = path
	}
}

func WithLandingPath(path string) Option {
	return func(g *Guard) {
		g.landingPath = path
	}
}

// WithPublicPaths replaces the set of locations open to everyone.
func WithPublicPaths(paths ...string) Option {
	return func(g *Guard) {
		g.publicPaths = paths
	}
}

func New(options ...Option) *Guard {
	g := &Guard{
		signInPath:  DefaultSignInPath,
		landingPath: DefaultLandingPath,
		publicPaths: []string{"/", DefaultSignInPath, "/most-wanted"},
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Check decides whether session may enter requested under req. It never
// fails: an anonymous user is sent to sign in, and a signed-in user without
// the needed role is sent to the landing page.
func (g *Guard) Check(session Session, req Requirement, requested string) Decision {
	if session == nil || !session.IsAuthenticated() {
		return Decision{
			Location: g.SignInLocation(requested),
			From:     requested,
			Reason:   ReasonUnauthenticated,
		}
	}
	if !req.admits(session.Role()) {
		return Decision{
			Location: g.landingPath,
			From:     requested,
			Reason:   ReasonForbidden,
		}
	}
	return Decision{Allowed: true}
}

// CheckPath derives the requirement from the module owning path. Public
// paths are always allowed; the landing page and paths outside any module
// only need a signed-in user.
func (g *Guard) CheckPath(session Session, path string) Decision {
	clean := path
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if g.isPublic(clean) {
		return Decision{Allowed: true}
	}
	if clean == g.landingPath {
		return g.Check(session, RequireAuthenticated(), path)
	}
	if m, ok := permissions.ModuleForRoute(clean); ok {
		return g.Check(session, RequireModule(m.Key), path)
	}
	return g.Check(session, RequireAuthenticated(), path)
}

// SignInLocation returns the sign-in path carrying from as the return
// location.
func (g *Guard) SignInLocation(from string) string {
	if from == "" || from == g.signInPath {
		return g.signInPath
	}
	return g.signInPath + "?" + url.Values{NextParam: {from}}.Encode()
}

// Require is HTTP middleware enforcing req for every request, redirecting
// with 303 See Other when the check fails.
func (g *Guard) Require(session Session, req Requirement) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			d := g.Check(session, req, r.URL.RequestURI())
			if !d.Allowed {
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}

func (g *Guard) isPublic(path string) bool {
	for _, p := range g.publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
