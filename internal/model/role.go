package model

// Role is the closed set of admin-backend roles a user can hold.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAnalyst    Role = "analyst"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleRanks orders roles from least to most privileged
var roleRanks = map[Role]int{
	RoleViewer:     0,
	RoleAnalyst:    1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ValidRole reports whether the value is one of the known roles
func ValidRole(r Role) bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the privilege rank of the role, or -1 for unknown values
func (r Role) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// AtLeast reports whether the role is at least as privileged as other
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= 0 && r.Rank() >= other.Rank()
}

// Roles lists every known role in ascending privilege order
func Roles() []Role {
	return []Role{RoleViewer, RoleAnalyst, RoleAdmin, RoleSuperAdmin}
}
