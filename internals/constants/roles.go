package constants

import (
	"fmt"
	"strings"
)

// Role is the coarse account role. Fine-grained routing uses the free-text approver position
// (UnitApprover.Role / FormApprovalWorkflow.ApprovalPosition), never this value.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleStaff, RoleAdmin}

// Roles allowed to act on approvals
var ApproverRoles = []Role{RoleStaff, RoleAdmin}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range AllRoles {
		if r == v {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) CanApprove() bool {
	for _, v := range ApproverRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Role error templates
const (
	ErrOnlyApproversCanAccess = "Only staff or admin users can access %s."
	ErrOnlyAdminsCanAccess    = "Only administrators can access %s."
)

func RoleErrorApprover(feature string) string {
	return fmt.Sprintf(ErrOnlyApproversCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}
