package mongostore

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

type complainantDoc struct {
	Name    string `bson:"name"`
	Phone   string `bson:"phone"`
	Email   string `bson:"email,omitempty"`
	Address string `bson:"address"`
}

type commentDoc struct {
	Seq      int       `bson:"seq"`
	Text     string    `bson:"text"`
	PostedBy string    `bson:"postedBy"`
	PostedAt time.Time `bson:"postedAt"`
}

type timelineDoc struct {
	Seq       int       `bson:"seq"`
	Status    string    `bson:"status"`
	UpdatedBy string    `bson:"updatedBy"`
	UpdatedAt time.Time `bson:"updatedAt"`
	Comment   string    `bson:"comment"`
}

type grievanceDoc struct {
	ID          string         `bson:"_id"`
	TicketID    string         `bson:"ticketId"`
	Complainant complainantDoc `bson:"complainant"`
	Department  string         `bson:"department"`
	Subject     string         `bson:"subject"`
	Description string         `bson:"description"`
	Location    string         `bson:"location"`
	Status      string         `bson:"status"`
	Priority    string         `bson:"priority"`
	Attachments []string       `bson:"attachments"`
	AssignedTo  *string        `bson:"assignedTo,omitempty"`
	FiledBy     string         `bson:"filedBy"`
	Comments    []commentDoc   `bson:"comments"`
	Timeline    []timelineDoc  `bson:"timeline"`
	CreatedAt   time.Time      `bson:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt"`
}

type departmentDoc struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Description      string    `bson:"description"`
	HeadOfDepartment *string   `bson:"headOfDepartment,omitempty"`
	ContactEmail     string    `bson:"contactEmail"`
	ContactPhone     string    `bson:"contactPhone"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	Department   *string   `bson:"department,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toGrievanceDoc(g *domain.Grievance) grievanceDoc {
	doc := grievanceDoc{
		ID:       g.ID,
		TicketID: g.TicketID,
		Complainant: complainantDoc{
			Name:    g.Complainant.Name,
			Phone:   g.Complainant.Phone,
			Email:   g.Complainant.Email,
			Address: g.Complainant.Address,
		},
		Department:  g.DepartmentID,
		Subject:     g.Subject,
		Description: g.Description,
		Location:    g.Location,
		Status:      string(g.Status),
		Priority:    string(g.Priority),
		Attachments: append([]string{}, g.Attachments...),
		AssignedTo:  g.AssignedTo,
		FiledBy:     g.FiledBy,
		Comments:    make([]commentDoc, 0, len(g.Comments)),
		Timeline:    make([]timelineDoc, 0, len(g.Timeline)),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	for _, c := range g.Comments {
		doc.Comments = append(doc.Comments, commentDoc{Seq: c.Seq, Text: c.Text, PostedBy: c.PostedBy, PostedAt: c.PostedAt})
	}
	for _, e := range g.Timeline {
		doc.Timeline = append(doc.Timeline, timelineDoc{
			Seq:       e.Seq,
			Status:    string(e.Status),
			UpdatedBy: e.UpdatedBy,
			UpdatedAt: e.UpdatedAt,
			Comment:   e.Comment,
		})
	}
	return doc
}

func (d grievanceDoc) toDomain() domain.Grievance {
	g := domain.Grievance{
		ID:       d.ID,
		TicketID: d.TicketID,
		Complainant: domain.Complainant{
			Name:    d.Complainant.Name,
			Phone:   d.Complainant.Phone,
			Email:   d.Complainant.Email,
			Address: d.Complainant.Address,
		},
		DepartmentID: d.Department,
		Subject:      d.Subject,
		Description:  d.Description,
		Location:     d.Location,
		Status:       domain.GrievanceStatus(d.Status),
		Priority:     domain.GrievancePriority(d.Priority),
		Attachments:  append([]string{}, d.Attachments...),
		AssignedTo:   d.AssignedTo,
		FiledBy:      d.FiledBy,
		Comments:     make([]domain.Comment, 0, len(d.Comments)),
		Timeline:     make([]domain.TimelineEntry, 0, len(d.Timeline)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, c := range d.Comments {
		g.Comments = append(g.Comments, domain.Comment{Seq: c.Seq, Text: c.Text, PostedBy: c.PostedBy, PostedAt: c.PostedAt})
	}
	for _, e := range d.Timeline {
		g.Timeline = append(g.Timeline, domain.TimelineEntry{
			Seq:       e.Seq,
			Status:    domain.GrievanceStatus(e.Status),
			UpdatedBy: e.UpdatedBy,
			UpdatedAt: e.UpdatedAt,
			Comment:   e.Comment,
		})
	}
	return g
}

func toDepartmentDoc(d *domain.Department) departmentDoc {
	return departmentDoc{
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

func (d departmentDoc) toDomain() domain.Department {
	return domain.Department{
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

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Department:   u.DepartmentID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		DepartmentID: d.Department,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
