package enums

import "slices"

// OperatorRole identifies what an authenticated station operator may do.
type OperatorRole string

const (
	OperatorRoleAttendant  OperatorRole = "attendant"
	OperatorRoleSupervisor OperatorRole = "supervisor"
	OperatorRoleManager    OperatorRole = "manager"
)

var validOperatorRoles = []OperatorRole{
	OperatorRoleAttendant,
	OperatorRoleSupervisor,
	OperatorRoleManager,
}

// IsValid reports whether the value matches a known operator role.
func (r OperatorRole) IsValid() bool {
	return slices.Contains(validOperatorRoles, r)
}

// ParseOperatorRole converts raw input into OperatorRole.
func ParseOperatorRole(value string) (OperatorRole, error) {
	return parse("operator role", value, validOperatorRoles)
}
