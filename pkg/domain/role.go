package domain

import dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"

// Role is the coarse authorization level attached to a principal by the auth
// collaborator. The core trusts it unconditionally once handed a validated
// principal.
type Role string

const (
	RoleReporter   Role = "reporter"
	RoleGovernment Role = "government"
	RoleAdmin      Role = "admin"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleReporter:   true,
	RoleGovernment: true,
	RoleAdmin:      true,
}

// ParseRole constructs a Role from external input (JWT claims, request
// bodies). Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role: "+s)
	}
	return r, nil
}

// IsValid checks membership in the role allowlist.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string { return string(r) }
