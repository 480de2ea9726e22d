package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name             string  `json:"name" validate:"required,min=3,max=100"`
	Description      string  `json:"description" validate:"required,max=500"`
	HeadOfDepartment *string `json:"headOfDepartment" validate:"omitempty,uuid"`
	ContactEmail     string  `json:"contactEmail" validate:"required,email"`
	ContactPhone     string  `json:"contactPhone" validate:"required,phone10"`
}

// ToInput maps the payload to the service input.
func (r CreateDepartmentRequest) ToInput() service.DepartmentInput {
	return service.DepartmentInput{
		Name:             &r.Name,
		Description:      &r.Description,
		HeadOfDepartment: r.HeadOfDepartment,
		ContactEmail:     &r.ContactEmail,
		ContactPhone:     &r.ContactPhone,
	}
}

// UpdateDepartmentRequest payload; absent or null fields stay unchanged and
// an empty headOfDepartment clears the head.
type UpdateDepartmentRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=3,max=100"`
	Description      *string `json:"description" validate:"omitempty,max=500"`
	HeadOfDepartment *string `json:"headOfDepartment" validate:"omitnil,uuid_or_empty"`
	ContactEmail     *string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone     *string `json:"contactPhone" validate:"omitempty,phone10"`
}

// ToInput maps the payload to the service input.
func (r UpdateDepartmentRequest) ToInput() service.DepartmentInput {
	return service.DepartmentInput{
		Name:             r.Name,
		Description:      r.Description,
		HeadOfDepartment: r.HeadOfDepartment,
		ContactEmail:     r.ContactEmail,
		ContactPhone:     r.ContactPhone,
	}
}

// DepartmentResponse describes a department.
type DepartmentResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	HeadOfDepartment *string   `json:"headOfDepartment"`
	ContactEmail     string    `json:"contactEmail"`
	ContactPhone     string    `json:"contactPhone"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DepartmentStatsResponse aggregates grievance counts.
type DepartmentStatsResponse struct {
	TotalGrievances    int64                            `json:"totalGrievances"`
	ResolvedGrievances int64                            `json:"resolvedGrievances"`
	ResolutionRate     float64                          `json:"resolutionRate"`
	StatusDistribution map[domain.GrievanceStatus]int64 `json:"statusDistribution"`
}

// NewDepartmentResponse maps a domain department.
func NewDepartmentResponse(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:               d.ID,
		Name:             d.Name,
		Description:      d.Description,
		HeadOfDepartment: d.HeadOfDepartment,
		ContactEmail:     d.ContactEmail,
		ContactPhone:     d.ContactPhone,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// NewDepartmentStatsResponse maps department statistics.
func NewDepartmentStatsResponse(s *domain.DepartmentStats) DepartmentStatsResponse {
	dist := s.StatusDistribution
	if dist == nil {
		dist = map[domain.GrievanceStatus]int64{}
	}
	return DepartmentStatsResponse{
		TotalGrievances:    s.TotalGrievances,
		ResolvedGrievances: s.ResolvedGrievances,
		ResolutionRate:     s.ResolutionRate,
		StatusDistribution: dist,
	}
}
