package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// DepartmentService manages the department registry and its statistics.
type DepartmentService struct {
	departments repository.DepartmentRepository
	grievances  repository.GrievanceRepository
	users       repository.UserRepository
}

// DepartmentDependencies bundles repositories for the department service.
type DepartmentDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	GrievanceRepo  repository.GrievanceRepository
	UserRepo       repository.UserRepository
}

// DepartmentInput carries department fields. On update nil fields are left
// unchanged; an empty HeadOfDepartment clears the head.
type DepartmentInput struct {
	Name             *string
	Description      *string
	HeadOfDepartment *string
	ContactEmail     *string
	ContactPhone     *string
}

// NewDepartmentService creates the service.
func NewDepartmentService(deps DepartmentDependencies) *DepartmentService {
	return &DepartmentService{
		departments: deps.DepartmentRepo,
		grievances:  deps.GrievanceRepo,
		users:       deps.UserRepo,
	}
}

// Create registers a department.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "name", Message: "Department name is required"}})
	}
	dept := &domain.Department{}
	if err := s.apply(ctx, dept, input); err != nil {
		return nil, err
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("department already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// Update changes the provided fields of a department.
func (s *DepartmentService) Update(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department", id)
	}
	if err := s.apply(ctx, dept, input); err != nil {
		return nil, err
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, notFoundOr(err, "department", id)
	}
	return dept, nil
}

// Get returns one department.
func (s *DepartmentService) Get(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department", id)
	}
	return dept, nil
}

// List returns departments ordered by name, filtered by a name substring.
func (s *DepartmentService) List(ctx context.Context, search string) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if depts == nil {
		depts = []domain.Department{}
	}
	return depts, nil
}

// Delete removes a department that no grievance references.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.departments.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "department", id)
	}
	count, err := s.grievances.CountByDepartment(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict("Cannot delete department with active grievances", map[string]any{
			"grievances": count,
		})
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		return notFoundOr(err, "department", id)
	}
	return nil
}

// Stats aggregates grievance counts for a department.
func (s *DepartmentService) Stats(ctx context.Context, id string) (*domain.DepartmentStats, error) {
	if _, err := s.departments.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "department", id)
	}
	counts, err := s.grievances.StatusCounts(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &domain.DepartmentStats{StatusDistribution: make(map[domain.GrievanceStatus]int64, len(counts))}
	for status, n := range counts {
		stats.StatusDistribution[status] = n
		stats.TotalGrievances += n
	}
	stats.ResolvedGrievances = counts[domain.StatusResolved]
	if stats.TotalGrievances > 0 {
		stats.ResolutionRate = float64(stats.ResolvedGrievances) / float64(stats.TotalGrievances) * 100
	}
	return stats, nil
}

func (s *DepartmentService) apply(ctx context.Context, dept *domain.Department, input DepartmentInput) error {
	if input.Name != nil {
		dept.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		dept.Description = strings.TrimSpace(*input.Description)
	}
	if input.ContactEmail != nil {
		dept.ContactEmail = strings.ToLower(strings.TrimSpace(*input.ContactEmail))
	}
	if input.ContactPhone != nil {
		dept.ContactPhone = strings.TrimSpace(*input.ContactPhone)
	}
	if input.HeadOfDepartment != nil {
		head := strings.TrimSpace(*input.HeadOfDepartment)
		if head == "" {
			dept.HeadOfDepartment = nil
			return nil
		}
		if _, err := s.users.GetByID(ctx, head); err != nil {
			return notFoundOr(err, "user", head)
		}
		dept.HeadOfDepartment = &head
	}
	return nil
}
