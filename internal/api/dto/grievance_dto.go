package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

// CreateGrievanceRequest payload.
type CreateGrievanceRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Phone       string   `json:"phone" validate:"required,phone10"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Address     string   `json:"address" validate:"required,max=200"`
	Department  string   `json:"department" validate:"required,uuid"`
	Subject     string   `json:"subject" validate:"required,min=5,max=200"`
	Description string   `json:"description" validate:"required,min=20,max=1000"`
	Location    string   `json:"location" validate:"required,max=200"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,required"`
}

// Normalize trims free-text fields.
func (r *CreateGrievanceRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.Address = strings.TrimSpace(r.Address)
	r.Department = strings.TrimSpace(r.Department)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	r.Priority = strings.TrimSpace(r.Priority)
}

// ToInput maps the payload to the service command.
func (r CreateGrievanceRequest) ToInput() service.CreateGrievanceInput {
	return service.CreateGrievanceInput{
		Complainant: domain.Complainant{
			Name:    r.Name,
			Phone:   r.Phone,
			Email:   r.Email,
			Address: r.Address,
		},
		DepartmentID: r.Department,
		Subject:      r.Subject,
		Description:  r.Description,
		Location:     r.Location,
		Priority:     domain.GrievancePriority(r.Priority),
		Attachments:  r.Attachments,
	}
}

// GrievanceListQuery captures list filters. Pointers distinguish absent from zero.
type GrievanceListQuery struct {
	Page       *int   `query:"page" validate:"omitempty,min=1"`
	Limit      *int   `query:"limit" validate:"omitempty,min=1,max=100"`
	Status     string `query:"status" validate:"omitempty,oneof=pending in-progress resolved rejected"`
	Department string `query:"department" validate:"omitempty,uuid"`
	Priority   string `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Search     string `query:"search" validate:"max=100"`
}

// ToFilter maps the query to the service filter.
func (q GrievanceListQuery) ToFilter() service.GrievanceListFilter {
	filter := service.GrievanceListFilter{Page: 1, Limit: service.DefaultPageSize}
	if q.Page != nil {
		filter.Page = *q.Page
	}
	if q.Limit != nil {
		filter.Limit = *q.Limit
	}
	if q.Status != "" {
		status := domain.GrievanceStatus(q.Status)
		filter.Status = &status
	}
	if q.Department != "" {
		dept := q.Department
		filter.DepartmentID = &dept
	}
	if q.Priority != "" {
		priority := domain.GrievancePriority(q.Priority)
		filter.Priority = &priority
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		filter.Search = &search
	}
	return filter
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=pending in-progress resolved rejected"`
	Comment string `json:"comment" validate:"required,notblank,max=500"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Text string `json:"text" validate:"required,notblank,max=500"`
}

// AssignRequest payload.
type AssignRequest struct {
	UserID   string `json:"userId" validate:"required,uuid"`
	UserName string `json:"userName" validate:"max=100"`
}

// ComplainantResponse mirrors domain.Complainant.
type ComplainantResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// CommentResponse is one comment.
type CommentResponse struct {
	Seq      int       `json:"seq"`
	Text     string    `json:"text"`
	PostedBy string    `json:"postedBy"`
	PostedAt time.Time `json:"postedAt"`
}

// TimelineEntryResponse is one audit entry.
type TimelineEntryResponse struct {
	Seq       int                    `json:"seq"`
	Status    domain.GrievanceStatus `json:"status"`
	UpdatedBy string                 `json:"updatedBy"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Comment   string                 `json:"comment"`
}

// GrievanceResponse provides the full grievance.
type GrievanceResponse struct {
	ID          string                   `json:"id"`
	TicketID    string                   `json:"ticketId"`
	Complainant ComplainantResponse      `json:"complainant"`
	Department  string                   `json:"department"`
	Subject     string                   `json:"subject"`
	Description string                   `json:"description"`
	Location    string                   `json:"location"`
	Status      domain.GrievanceStatus   `json:"status"`
	Priority    domain.GrievancePriority `json:"priority"`
	Attachments []string                 `json:"attachments"`
	AssignedTo  *string                  `json:"assignedTo"`
	FiledBy     string                   `json:"filedBy"`
	Comments    []CommentResponse        `json:"comments"`
	Timeline    []TimelineEntryResponse  `json:"timeline"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// GrievancePageResponse is one page of grievances.
type GrievancePageResponse struct {
	Items      []GrievanceResponse `json:"items"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"totalPages"`
}

// NewGrievanceResponse maps a domain grievance.
func NewGrievanceResponse(g *domain.Grievance) GrievanceResponse {
	resp := GrievanceResponse{
		ID:       g.ID,
		TicketID: g.TicketID,
		Complainant: ComplainantResponse{
			Name:    g.Complainant.Name,
			Phone:   g.Complainant.Phone,
			Email:   g.Complainant.Email,
			Address: g.Complainant.Address,
		},
		Department:  g.DepartmentID,
		Subject:     g.Subject,
		Description: g.Description,
		Location:    g.Location,
		Status:      g.Status,
		Priority:    g.Priority,
		Attachments: append([]string{}, g.Attachments...),
		AssignedTo:  g.AssignedTo,
		FiledBy:     g.FiledBy,
		Comments:    make([]CommentResponse, 0, len(g.Comments)),
		Timeline:    make([]TimelineEntryResponse, 0, len(g.Timeline)),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	for _, c := range g.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{Seq: c.Seq, Text: c.Text, PostedBy: c.PostedBy, PostedAt: c.PostedAt})
	}
	for _, e := range g.Timeline {
		resp.Timeline = append(resp.Timeline, TimelineEntryResponse{
			Seq:       e.Seq,
			Status:    e.Status,
			UpdatedBy: e.UpdatedBy,
			UpdatedAt: e.UpdatedAt,
			Comment:   e.Comment,
		})
	}
	return resp
}

// NewGrievancePageResponse maps a service page.
func NewGrievancePageResponse(page *service.GrievancePage) GrievancePageResponse {
	items := make([]GrievanceResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewGrievanceResponse(&page.Items[i]))
	}
	return GrievancePageResponse{
		Items:      items,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}
