package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/grievance-service/internal/domain"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field collides with an existing record.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleStatus is returned when a status update finds a different status than expected.
	ErrStaleStatus = errors.New("grievance status changed")
)

// GrievanceFilter captures listing parameters.
type GrievanceFilter struct {
	Status       *domain.GrievanceStatus
	DepartmentID *string
	Priority     *domain.GrievancePriority
	FiledBy      *string
	// Search matches ticket id or complainant phone, case-insensitive substring.
	Search *string
	Limit  int
	Offset int
}

// GrievanceRepository persists grievances together with their comment and timeline logs.
//
// Every mutating method is a single atomic operation against the store.
type GrievanceRepository interface {
	// Create allocates the ticket id when empty and stores the grievance with
	// its initial timeline entries.
	Create(ctx context.Context, grievance *domain.Grievance) error
	GetByID(ctx context.Context, id string) (*domain.Grievance, error)
	List(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, int64, error)
	// UpdateStatus moves the grievance from status from to entry.Status and
	// appends entry to the timeline. It returns ErrStaleStatus, leaving the
	// record untouched, when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from domain.GrievanceStatus, entry domain.TimelineEntry) (*domain.Grievance, error)
	// Assign sets the assignee and appends entry stamped with the current status.
	Assign(ctx context.Context, id, assigneeID string, entry domain.TimelineEntry) (*domain.Grievance, error)
	AddComment(ctx context.Context, id string, comment domain.Comment) (*domain.Grievance, error)
	CountByDepartment(ctx context.Context, departmentID string) (int64, error)
	StatusCounts(ctx context.Context, departmentID string) (map[domain.GrievanceStatus]int64, error)
}

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	// List returns departments ordered by name, optionally matching search in the name.
	List(ctx context.Context, search string) ([]domain.Department, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Grievances  GrievanceRepository
	Departments DepartmentRepository
	Users       UserRepository
}
