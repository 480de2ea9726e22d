package domain

import "time"

// Department represents an organizational unit grievances are filed against.
type Department struct {
	ID               string
	Name             string
	Description      string
	HeadOfDepartment *string
	ContactEmail     string
	ContactPhone     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DepartmentStats summarizes grievance counts for a department.
type DepartmentStats struct {
	TotalGrievances    int64
	ResolvedGrievances int64
	ResolutionRate     float64
	StatusDistribution map[GrievanceStatus]int64
}
