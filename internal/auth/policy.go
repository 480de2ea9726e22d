package auth

import "github.com/spec-kit/grievance-service/internal/domain"

// Capability names one operation guarded by the access policy.
type Capability string

const (
	CapGrievanceCreate       Capability = "grievance:create"
	CapGrievanceReadOwn      Capability = "grievance:read:own"
	CapGrievanceReadAny      Capability = "grievance:read:any"
	CapGrievanceComment      Capability = "grievance:comment"
	CapGrievanceUpdateStatus Capability = "grievance:update-status"
	CapGrievanceAssign       Capability = "grievance:assign"
	CapDepartmentRead        Capability = "department:read"
	CapDepartmentStats       Capability = "department:stats"
	CapDepartmentManage      Capability = "department:manage"
	CapUserList              Capability = "user:list"
)

// Policy maps each role to the capabilities it holds.
type Policy struct {
	grants map[domain.Role]map[Capability]struct{}
}

// NewPolicy builds a policy from explicit role grants.
func NewPolicy(grants map[domain.Role][]Capability) *Policy {
	p := &Policy{grants: make(map[domain.Role]map[Capability]struct{}, len(grants))}
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		p.grants[role] = set
	}
	return p
}

// DefaultPolicy returns the citizen/staff/admin capability sets.
func DefaultPolicy() *Policy {
	citizen := []Capability{
		CapGrievanceCreate,
		CapGrievanceReadOwn,
		CapGrievanceComment,
		CapDepartmentRead,
	}
	staff := append(append([]Capability{}, citizen...),
		CapGrievanceReadAny,
		CapGrievanceUpdateStatus,
		CapGrievanceAssign,
		CapDepartmentStats,
	)
	admin := append(append([]Capability{}, staff...),
		CapDepartmentManage,
		CapUserList,
	)
	return NewPolicy(map[domain.Role][]Capability{
		domain.RoleCitizen: citizen,
		domain.RoleStaff:   staff,
		domain.RoleAdmin:   admin,
	})
}

// Allows reports whether role holds capability.
func (p *Policy) Allows(role domain.Role, capability Capability) bool {
	if p == nil {
		return false
	}
	_, ok := p.grants[role][capability]
	return ok
}
