package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		role       domain.Role
		capability Capability
		allowed    bool
	}{
		{domain.RoleCitizen, CapGrievanceCreate, true},
		{domain.RoleCitizen, CapGrievanceComment, true},
		{domain.RoleCitizen, CapGrievanceReadAny, false},
		{domain.RoleCitizen, CapGrievanceUpdateStatus, false},
		{domain.RoleCitizen, CapDepartmentStats, false},
		{domain.RoleStaff, CapGrievanceUpdateStatus, true},
		{domain.RoleStaff, CapGrievanceAssign, true},
		{domain.RoleStaff, CapDepartmentStats, true},
		{domain.RoleStaff, CapDepartmentManage, false},
		{domain.RoleStaff, CapUserList, false},
		{domain.RoleAdmin, CapDepartmentManage, true},
		{domain.RoleAdmin, CapUserList, true},
		{domain.RoleAdmin, CapGrievanceCreate, true},
		{domain.Role("guest"), CapDepartmentRead, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.role)+"/"+string(tc.capability), func(t *testing.T) {
			assert.Equal(t, tc.allowed, policy.Allows(tc.role, tc.capability))
		})
	}
}

func TestNilPolicyDeniesEverything(t *testing.T) {
	var policy *Policy
	assert.False(t, policy.Allows(domain.RoleAdmin, CapUserList))
}
