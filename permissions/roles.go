package permissions

import "strings"

// Role is one of a closed set of staff and public roles. It decides which
// modules a signed-in user can reach.
type Role string

const (
	RoleCitizen       Role = "CITIZEN"
	RolePoliceOfficer Role = "POLICE_OFFICER"
	RoleDetective     Role = "DETECTIVE"
	RoleCaptain       Role = "CAPTAIN"
	RoleJudge         Role = "JUDGE"
	RoleChief         Role = "CHIEF"
	RoleAdmin         Role = "ADMIN"
)

// DefaultRole is assumed when a user signs in and no role is known.
const DefaultRole = RoleCitizen

// Roles lists every role in ascending order of reach.
var Roles = []Role{
	RoleCitizen,
	RolePoliceOfficer,
	RoleDetective,
	RoleCaptain,
	RoleJudge,
	RoleChief,
	RoleAdmin,
}

// Backend role names that do not spell a Role directly.
var roleAliases = map[string]Role{
	"OFFICER":     RolePoliceOfficer,
	"POLICE":      RolePoliceOfficer,
	"PATROL":      RolePoliceOfficer,
	"CADET":       RolePoliceOfficer,
	"SERGEANT":    RolePoliceOfficer,
	"SERGENT":     RolePoliceOfficer,
	"SUPERVISOR":  RoleCaptain,
	"COMPLAINANT": RoleCitizen,
}

// Valid reports whether r is part of the enumeration.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole maps a role name as sent by the backend or typed by a user
// ("Detective", "police officer", "Patrol") onto the enumeration.
func ParseRole(s string) (Role, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if norm == "" {
		return "", false
	}
	if r := Role(norm); r.Valid() {
		return r, true
	}
	if r, ok := roleAliases[norm]; ok {
		return r, true
	}
	return "", false
}
