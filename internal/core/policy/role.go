package policy

// Role is a contributor's repository permission level as reported by
// the collaborator-permission API.
type Role int

const (
	RoleNone Role = iota
	RoleTriage
	RoleWrite
	RoleMaintain
	RoleAdmin
)

// ParseRole maps the API's role/permission strings onto a Role.
// Read-only access carries no assignment privilege and maps to none,
// as does anything unrecognized.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "maintain":
		return RoleMaintain
	case "write", "push":
		return RoleWrite
	case "triage":
		return RoleTriage
	}
	return RoleNone
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMaintain:
		return "maintain"
	case RoleWrite:
		return "write"
	case RoleTriage:
		return "triage"
	}
	return "none"
}

// IsTeamMember reports whether the role is triage or above.
func (r Role) IsTeamMember() bool {
	return r >= RoleTriage
}

// IsTriagerOnly reports whether the role is exactly triage. The
// default policy table uses the inclusive IsTeamMember predicate; this
// exists for the strict bypass variant.
func (r Role) IsTriagerOnly() bool {
	return r == RoleTriage
}

// IsCommitter reports whether the role is write or above.
func (r Role) IsCommitter() bool {
	return r >= RoleWrite
}
