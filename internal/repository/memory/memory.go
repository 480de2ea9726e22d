// Package memory provides mutex-guarded in-process repositories used for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// NewStore wires the three in-memory repositories.
func NewStore() repository.Store {
	return repository.Store{
		Grievances:  NewGrievanceRepository(),
		Departments: NewDepartmentRepository(),
		Users:       NewUserRepository(),
	}
}

// GrievanceRepository keeps grievances in a map keyed by id.
type GrievanceRepository struct {
	mu        sync.Mutex
	byID      map[string]*domain.Grievance
	tickets   map[string]string
	sequences map[int]int64
}

// NewGrievanceRepository creates an empty ledger.
func NewGrievanceRepository() *GrievanceRepository {
	return &GrievanceRepository{
		byID:      make(map[string]*domain.Grievance),
		tickets:   make(map[string]string),
		sequences: make(map[int]int64),
	}
}

func (r *GrievanceRepository) Create(_ context.Context, g *domain.Grievance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.UpdatedAt = g.CreatedAt
	if g.TicketID == "" {
		year := g.CreatedAt.Year()
		r.sequences[year]++
		g.TicketID = domain.FormatTicketID(year, r.sequences[year])
	}
	if _, exists := r.byID[g.ID]; exists {
		return repository.ErrDuplicate
	}
	if _, exists := r.tickets[g.TicketID]; exists {
		return repository.ErrDuplicate
	}
	if g.Attachments == nil {
		g.Attachments = []string{}
	}
	for i := range g.Timeline {
		g.Timeline[i].Seq = i + 1
	}
	for i := range g.Comments {
		g.Comments[i].Seq = i + 1
	}

	r.byID[g.ID] = cloneGrievance(g)
	r.tickets[g.TicketID] = g.ID
	return nil
}

func (r *GrievanceRepository) GetByID(_ context.Context, id string) (*domain.Grievance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneGrievance(g), nil
}

func (r *GrievanceRepository) List(_ context.Context, filter repository.GrievanceFilter) ([]domain.Grievance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	search := ""
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	matched := make([]*domain.Grievance, 0, len(r.byID))
	for _, g := range r.byID {
		if filter.Status != nil && g.Status != *filter.Status {
			continue
		}
		if filter.DepartmentID != nil && g.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.Priority != nil && g.Priority != *filter.Priority {
			continue
		}
		if filter.FiledBy != nil && g.FiledBy != *filter.FiledBy {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(g.TicketID), search) &&
			!strings.Contains(strings.ToLower(g.Complainant.Phone), search) {
			continue
		}
		matched = append(matched, g)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].TicketID > matched[j].TicketID
	})

	total := int64(len(matched))
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]domain.Grievance, 0, end-offset)
	for _, g := range matched[offset:end] {
		items = append(items, *cloneGrievance(g))
	}
	return items, total, nil
}

func (r *GrievanceRepository) UpdateStatus(_ context.Context, id string, from domain.GrievanceStatus, entry domain.TimelineEntry) (*domain.Grievance, error) {
	return r.mutate(id, func(g *domain.Grievance) error {
		if g.Status != from {
			return repository.ErrStaleStatus
		}
		g.Status = entry.Status
		entry.Seq = len(g.Timeline) + 1
		g.Timeline = append(g.Timeline, entry)
		g.UpdatedAt = entry.UpdatedAt
		return nil
	})
}

func (r *GrievanceRepository) Assign(_ context.Context, id, assigneeID string, entry domain.TimelineEntry) (*domain.Grievance, error) {
	return r.mutate(id, func(g *domain.Grievance) error {
		assignee := assigneeID
		g.AssignedTo = &assignee
		entry.Status = g.Status
		entry.Seq = len(g.Timeline) + 1
		g.Timeline = append(g.Timeline, entry)
		g.UpdatedAt = entry.UpdatedAt
		return nil
	})
}

func (r *GrievanceRepository) AddComment(_ context.Context, id string, comment domain.Comment) (*domain.Grievance, error) {
	return r.mutate(id, func(g *domain.Grievance) error {
		comment.Seq = len(g.Comments) + 1
		g.Comments = append(g.Comments, comment)
		g.UpdatedAt = comment.PostedAt
		return nil
	})
}

func (r *GrievanceRepository) CountByDepartment(_ context.Context, departmentID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, g := range r.byID {
		if g.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

func (r *GrievanceRepository) StatusCounts(_ context.Context, departmentID string) (map[domain.GrievanceStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.GrievanceStatus]int64)
	for _, g := range r.byID {
		if g.DepartmentID == departmentID {
			counts[g.Status]++
		}
	}
	return counts, nil
}

// mutate runs fn under the store lock; fn must not modify g when it returns an error.
func (r *GrievanceRepository) mutate(id string, fn func(g *domain.Grievance) error) (*domain.Grievance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	return cloneGrievance(g), nil
}

func cloneGrievance(g *domain.Grievance) *domain.Grievance {
	out := *g
	out.Attachments = append([]string{}, g.Attachments...)
	out.Comments = append([]domain.Comment{}, g.Comments...)
	out.Timeline = append([]domain.TimelineEntry{}, g.Timeline...)
	if g.AssignedTo != nil {
		assignee := *g.AssignedTo
		out.AssignedTo = &assignee
	}
	return &out
}

// DepartmentRepository keeps departments in a map keyed by id.
type DepartmentRepository struct {
	mu   sync.Mutex
	byID map[string]domain.Department
}

// NewDepartmentRepository creates an empty registry.
func NewDepartmentRepository() *DepartmentRepository {
	return &DepartmentRepository{byID: make(map[string]domain.Department)}
}

func (r *DepartmentRepository) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	if _, exists := r.byID[dept.ID]; exists {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	dept.CreatedAt = now
	dept.UpdatedAt = now
	r.byID[dept.ID] = cloneDepartment(*dept)
	return nil
}

func (r *DepartmentRepository) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[dept.ID]
	if !ok {
		return repository.ErrNotFound
	}
	dept.CreatedAt = existing.CreatedAt
	dept.UpdatedAt = time.Now().UTC()
	r.byID[dept.ID] = cloneDepartment(*dept)
	return nil
}

func (r *DepartmentRepository) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dept, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneDepartment(dept)
	return &out, nil
}

func (r *DepartmentRepository) List(_ context.Context, search string) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(search)
	result := []domain.Department{}
	for _, dept := range r.byID {
		if needle != "" && !strings.Contains(strings.ToLower(dept.Name), needle) {
			continue
		}
		result = append(result, cloneDepartment(dept))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *DepartmentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneDepartment(dept domain.Department) domain.Department {
	if dept.HeadOfDepartment != nil {
		head := *dept.HeadOfDepartment
		dept.HeadOfDepartment = &head
	}
	return dept
}

// UserRepository keeps accounts in a map keyed by id.
type UserRepository struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

// NewUserRepository creates an empty identity store.
func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := r.byID[user.ID]; exists {
		return repository.ErrDuplicate
	}
	if r.emailTaken(user.Email, "") {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.byID[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(user)
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byID {
		if strings.EqualFold(user.Email, email) {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		result = append(result, cloneUser(user))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Email < result[j].Email
	})
	return result, nil
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, user := range r.byID {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

func cloneUser(user domain.User) domain.User {
	if user.DepartmentID != nil {
		dept := *user.DepartmentID
		user.DepartmentID = &dept
	}
	return user
}
