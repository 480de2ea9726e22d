package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

const (
	// MaxTextLength bounds comments and timeline notes.
	MaxTextLength = 500
	// RegisteredNote is the comment of the first timeline entry.
	RegisteredNote = "Grievance registered"

	createAttempts     = 3
	transitionAttempts = 3
)

// Actor is the caller on whose behalf a command runs.
type Actor struct {
	ID   string
	Role domain.Role
	// ReadAny lifts the own-grievances scope.
	ReadAny bool
}

// TransitionPolicy decides whether a grievance may move from one status to another.
type TransitionPolicy func(from, to domain.GrievanceStatus) bool

// AllowAllTransitions accepts every transition, including a status to itself.
func AllowAllTransitions(_, _ domain.GrievanceStatus) bool { return true }

// GrievanceService coordinates grievance workflows.
type GrievanceService struct {
	grievances  repository.GrievanceRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	transitions TransitionPolicy
	now         func() time.Time
}

// GrievanceDependencies bundles repositories for the grievance service.
type GrievanceDependencies struct {
	GrievanceRepo  repository.GrievanceRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
	// Transitions defaults to AllowAllTransitions.
	Transitions TransitionPolicy
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// CreateGrievanceInput describes a new complaint.
type CreateGrievanceInput struct {
	Complainant  domain.Complainant
	DepartmentID string
	Subject      string
	Description  string
	Location     string
	Priority     domain.GrievancePriority
	Attachments  []string
}

// GrievanceListFilter describes listing filters. Page is 1-based.
type GrievanceListFilter struct {
	Status       *domain.GrievanceStatus
	DepartmentID *string
	Priority     *domain.GrievancePriority
	Search       *string
	Page         int
	Limit        int
}

// GrievancePage is one page of grievances.
type GrievancePage struct {
	Items      []domain.Grievance
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// NewGrievanceService constructs the service.
func NewGrievanceService(deps GrievanceDependencies) *GrievanceService {
	s := &GrievanceService{
		grievances:  deps.GrievanceRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		transitions: deps.Transitions,
		now:         deps.Clock,
	}
	if s.transitions == nil {
		s.transitions = AllowAllTransitions
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create files a grievance with a fresh ticket id and its registration entry.
func (s *GrievanceService) Create(ctx context.Context, actor Actor, input CreateGrievanceInput) (*domain.Grievance, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "priority", Message: "Invalid priority"}})
	}
	if _, err := s.departments.GetByID(ctx, input.DepartmentID); err != nil {
		return nil, notFoundOr(err, "department", input.DepartmentID)
	}

	attachments := append([]string{}, input.Attachments...)
	var grievance *domain.Grievance
	for attempt := 1; ; attempt++ {
		now := s.now().UTC()
		grievance = &domain.Grievance{
			Complainant:  trimComplainant(input.Complainant),
			DepartmentID: input.DepartmentID,
			Subject:      strings.TrimSpace(input.Subject),
			Description:  strings.TrimSpace(input.Description),
			Location:     strings.TrimSpace(input.Location),
			Status:       domain.StatusPending,
			Priority:     priority,
			Attachments:  attachments,
			FiledBy:      actor.ID,
			Comments:     []domain.Comment{},
			Timeline: []domain.TimelineEntry{{
				Status:    domain.StatusPending,
				UpdatedBy: actor.ID,
				UpdatedAt: now,
				Comment:   RegisteredNote,
			}},
			CreatedAt: now,
		}
		err := s.grievances.Create(ctx, grievance)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt < createAttempts {
			continue
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("could not allocate a unique ticket id", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, grievance, actor.ID, events.EventGrievanceCreated, events.GrievanceCreatedPayload{
		DepartmentID: grievance.DepartmentID,
		Priority:     grievance.Priority,
		Subject:      grievance.Subject,
	})
	return grievance, nil
}

// Get returns a grievance with its comments and timeline.
func (s *GrievanceService) Get(ctx context.Context, actor Actor, id string) (*domain.Grievance, error) {
	grievance, err := s.grievances.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "grievance", id)
	}
	if !canRead(actor, grievance) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return grievance, nil
}

// List returns a page of grievances, newest first. Actors without ReadAny
// only see grievances they filed.
func (s *GrievanceService) List(ctx context.Context, actor Actor, filter GrievanceListFilter) (*GrievancePage, error) {
	page := filter.Page
	if page == 0 {
		page = 1
	}
	limit := filter.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "page", Message: "Page must be at least 1"}})
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "limit", Message: fmt.Sprintf("Limit must be between 1 and %d", MaxPageSize)}})
	}

	repoFilter := repository.GrievanceFilter{
		Status:       filter.Status,
		DepartmentID: filter.DepartmentID,
		Priority:     filter.Priority,
		Search:       filter.Search,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}
	if !actor.ReadAny {
		filedBy := actor.ID
		repoFilter.FiledBy = &filedBy
	}

	items, total, err := s.grievances.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.Grievance{}
	}
	return &GrievancePage{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: TotalPages(total, limit),
	}, nil
}

// Transition moves a grievance to status and records the change on its timeline.
func (s *GrievanceService) Transition(ctx context.Context, actor Actor, id string, status domain.GrievanceStatus, comment string) (*domain.Grievance, error) {
	if !status.Valid() {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "status", Message: "Invalid status"}})
	}
	comment, err := requireText("comment", comment)
	if err != nil {
		return nil, err
	}
	var (
		current *domain.Grievance
		updated *domain.Grievance
	)
	// The update only applies if the status the policy approved is still stored.
	for attempt := 1; ; attempt++ {
		current, err = s.grievances.GetByID(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "grievance", id)
		}
		if !s.transitions(current.Status, status) {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("cannot move grievance from %s to %s", current.Status, status),
				map[string]any{"from": current.Status, "to": status},
			)
		}

		updated, err = s.grievances.UpdateStatus(ctx, id, current.Status, domain.TimelineEntry{
			Status:    status,
			UpdatedBy: actor.ID,
			UpdatedAt: s.now().UTC(),
			Comment:   comment,
		})
		if errors.Is(err, repository.ErrStaleStatus) {
			if attempt < transitionAttempts {
				continue
			}
			return nil, apperrors.NewConflict("grievance status changed concurrently", map[string]any{"id": id})
		}
		if err != nil {
			return nil, notFoundOr(err, "grievance", id)
		}
		break
	}

	s.publishEvent(ctx, updated, actor.ID, events.EventGrievanceStatusChanged, events.GrievanceStatusChangedPayload{
		OldStatus: current.Status,
		NewStatus: updated.Status,
		Comment:   comment,
	})
	return updated, nil
}

// AddComment appends a comment to the grievance.
func (s *GrievanceService) AddComment(ctx context.Context, actor Actor, id, text string) (*domain.Grievance, error) {
	text, err := requireText("text", text)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	updated, err := s.grievances.AddComment(ctx, id, domain.Comment{
		Text:     text,
		PostedBy: actor.ID,
		PostedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, notFoundOr(err, "grievance", id)
	}

	payload := events.GrievanceCommentAddedPayload{BodyPreview: stringPreview(text, 120)}
	if n := len(updated.Comments); n > 0 {
		payload.Seq = updated.Comments[n-1].Seq
	}
	s.publishEvent(ctx, updated, actor.ID, events.EventGrievanceCommentAdded, payload)
	return updated, nil
}

// Assign hands the grievance to a user and notes it on the timeline without
// changing its status. An empty assigneeName falls back to the user's name.
func (s *GrievanceService) Assign(ctx context.Context, actor Actor, id, assigneeID, assigneeName string) (*domain.Grievance, error) {
	if _, err := s.grievances.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "grievance", id)
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, notFoundOr(err, "user", assigneeID)
	}
	name := strings.TrimSpace(assigneeName)
	if name == "" {
		name = assignee.Name
	}

	updated, err := s.grievances.Assign(ctx, id, assignee.ID, domain.TimelineEntry{
		UpdatedBy: actor.ID,
		UpdatedAt: s.now().UTC(),
		Comment:   "Assigned to " + name,
	})
	if err != nil {
		return nil, notFoundOr(err, "grievance", id)
	}

	s.publishEvent(ctx, updated, actor.ID, events.EventGrievanceAssigned, events.GrievanceAssignedPayload{
		AssigneeID:   assignee.ID,
		AssigneeName: name,
	})
	return updated, nil
}

func canRead(actor Actor, grievance *domain.Grievance) bool {
	return actor.ReadAny || (actor.ID != "" && grievance.FiledBy == actor.ID)
}

func requireText(field, text string) (string, error) {
	text = strings.TrimSpace(text)
	label := strings.ToUpper(field[:1]) + field[1:]
	switch {
	case text == "":
		return "", apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: field, Message: label + " is required"}})
	case len([]rune(text)) > MaxTextLength:
		return "", apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: field, Message: fmt.Sprintf("%s cannot exceed %d characters", label, MaxTextLength)}})
	}
	return text, nil
}

func trimComplainant(c domain.Complainant) domain.Complainant {
	return domain.Complainant{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.ToLower(strings.TrimSpace(c.Email)),
		Address: strings.TrimSpace(c.Address),
	}
}

func (s *GrievanceService) publishEvent(ctx context.Context, g *domain.Grievance, actorID string, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		GrievanceID: g.ID,
		TicketID:    g.TicketID,
		ActorID:     actorID,
		Timestamp:   s.now().UTC(),
		Payload:     payload,
	})
}

func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
