// Package repositorytest holds behaviour checks shared by every store backend.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// Run exercises store against the repository contracts. Records are scoped to
// fresh departments and users so the checks tolerate pre-existing data.
func Run(t *testing.T, store repository.Store) {
	t.Run("grievance create and read", func(t *testing.T) { testCreateAndRead(t, store) })
	t.Run("grievance concurrent ticket ids", func(t *testing.T) { testConcurrentTicketIDs(t, store) })
	t.Run("grievance duplicate ticket id", func(t *testing.T) { testDuplicateTicketID(t, store) })
	t.Run("grievance mutations", func(t *testing.T) { testMutations(t, store) })
	t.Run("grievance list", func(t *testing.T) { testList(t, store) })
	t.Run("grievance department aggregates", func(t *testing.T) { testAggregates(t, store) })
	t.Run("departments", func(t *testing.T) { testDepartments(t, store) })
	t.Run("users", func(t *testing.T) { testUsers(t, store) })
}

func newGrievance(departmentID, filedBy, phone string, at time.Time) *domain.Grievance {
	return &domain.Grievance{
		Complainant: domain.Complainant{
			Name:    "Asha Rao",
			Phone:   phone,
			Email:   "asha@example.com",
			Address: "12 Lake Road",
		},
		DepartmentID: departmentID,
		Subject:      "Streetlight out",
		Description:  "The streetlight near the park has been out for a week.",
		Location:     "Ward 4",
		Status:       domain.StatusPending,
		Priority:     domain.PriorityHigh,
		Attachments:  []string{"uploads/a.jpg"},
		FiledBy:      filedBy,
		Comments:     []domain.Comment{},
		Timeline: []domain.TimelineEntry{{
			Status:    domain.StatusPending,
			UpdatedBy: filedBy,
			UpdatedAt: at,
			Comment:   "Grievance registered",
		}},
		CreatedAt: at,
	}
}

func testCreateAndRead(t *testing.T, store repository.Store) {
	ctx := context.Background()
	filer := uuid.NewString()
	g := newGrievance(uuid.NewString(), filer, "9876543210", time.Now().UTC().Truncate(time.Millisecond))

	require.NoError(t, store.Grievances.Create(ctx, g))
	require.NotEmpty(t, g.ID)
	assert.True(t, domain.IsTicketID(g.TicketID), g.TicketID)

	got, err := store.Grievances.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.TicketID, got.TicketID)
	assert.Equal(t, g.Complainant, got.Complainant)
	assert.Equal(t, []string{"uploads/a.jpg"}, got.Attachments)
	assert.Equal(t, filer, got.FiledBy)
	require.Len(t, got.Timeline, 1)
	assert.Equal(t, 1, got.Timeline[0].Seq)
	assert.Equal(t, domain.StatusPending, got.Timeline[0].Status)
	assert.Empty(t, got.Comments)

	_, err = store.Grievances.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testConcurrentTicketIDs(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dept := uuid.NewString()
	const workers = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[string]bool{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g := newGrievance(dept, uuid.NewString(), fmt.Sprintf("91%08d", i), time.Now().UTC())
			if !assert.NoError(t, store.Grievances.Create(ctx, g)) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[g.TicketID], "duplicate %s", g.TicketID)
			seen[g.TicketID] = true
		}(i)
	}
	wg.Wait()
	assert.Len(t, seen, workers)
}

func testDuplicateTicketID(t *testing.T, store repository.Store) {
	ctx := context.Background()
	first := newGrievance(uuid.NewString(), uuid.NewString(), "9000000001", time.Now().UTC())
	require.NoError(t, store.Grievances.Create(ctx, first))

	second := newGrievance(first.DepartmentID, first.FiledBy, "9000000002", time.Now().UTC())
	second.TicketID = first.TicketID
	assert.ErrorIs(t, store.Grievances.Create(ctx, second), repository.ErrDuplicate)
}

func testMutations(t *testing.T, store repository.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	g := newGrievance(uuid.NewString(), uuid.NewString(), "9876543210", now)
	require.NoError(t, store.Grievances.Create(ctx, g))
	officer := uuid.NewString()

	_, err := store.Grievances.UpdateStatus(ctx, g.ID, domain.StatusResolved, domain.TimelineEntry{
		Status: domain.StatusRejected, UpdatedBy: officer, UpdatedAt: now.Add(time.Minute), Comment: "Duplicate",
	})
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
	unchanged, err := store.Grievances.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, unchanged.Status)
	assert.Len(t, unchanged.Timeline, 1)

	updated, err := store.Grievances.UpdateStatus(ctx, g.ID, domain.StatusPending, domain.TimelineEntry{
		Status: domain.StatusInProgress, UpdatedBy: officer, UpdatedAt: now.Add(time.Minute), Comment: "Crew dispatched",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, 2, updated.Timeline[1].Seq)
	assert.Equal(t, "Crew dispatched", updated.Timeline[1].Comment)

	updated, err = store.Grievances.Assign(ctx, g.ID, officer, domain.TimelineEntry{
		UpdatedBy: officer, UpdatedAt: now.Add(2 * time.Minute), Comment: "Assigned to Ravi",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, officer, *updated.AssignedTo)
	require.Len(t, updated.Timeline, 3)
	assert.Equal(t, domain.StatusInProgress, updated.Timeline[2].Status)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	updated, err = store.Grievances.AddComment(ctx, g.ID, domain.Comment{
		Text: "Parts ordered", PostedBy: officer, PostedAt: now.Add(3 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, 1, updated.Comments[0].Seq)
	assert.Equal(t, "Parts ordered", updated.Comments[0].Text)

	// user text is stored verbatim, even when it looks like an operator
	updated, err = store.Grievances.AddComment(ctx, g.ID, domain.Comment{
		Text: "$status", PostedBy: officer, PostedAt: now.Add(4 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 2)
	assert.Equal(t, "$status", updated.Comments[1].Text)
	assert.Equal(t, 2, updated.Comments[1].Seq)

	stored, err := store.Grievances.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Timeline, 3)
	assert.Len(t, stored.Comments, 2)
	last, ok := stored.LastTimelineEntry()
	require.True(t, ok)
	assert.Equal(t, stored.Status, last.Status)

	missing := uuid.NewString()
	_, err = store.Grievances.UpdateStatus(ctx, missing, domain.StatusPending, domain.TimelineEntry{Status: domain.StatusResolved})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Grievances.Assign(ctx, missing, officer, domain.TimelineEntry{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Grievances.AddComment(ctx, missing, domain.Comment{Text: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testList(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dept := uuid.NewString()
	filer := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)
	phones := []string{"9876543210", "9123456789", "9000000000"}
	created := make([]*domain.Grievance, 0, len(phones))
	for i, phone := range phones {
		g := newGrievance(dept, filer, phone, base.Add(time.Duration(i)*time.Second))
		if i == 2 {
			g.Priority = domain.PriorityLow
		}
		require.NoError(t, store.Grievances.Create(ctx, g))
		created = append(created, g)
	}

	items, total, err := store.Grievances.List(ctx, repository.GrievanceFilter{DepartmentID: &dept, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, created[2].ID, items[0].ID)
	assert.Equal(t, created[1].ID, items[1].ID)
	assert.NotEmpty(t, items[0].Timeline)

	items, _, err = store.Grievances.List(ctx, repository.GrievanceFilter{DepartmentID: &dept, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created[0].ID, items[0].ID)

	search := "987654"
	items, total, err = store.Grievances.List(ctx, repository.GrievanceFilter{DepartmentID: &dept, Search: &search, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "9876543210", items[0].Complainant.Phone)

	ticket := created[1].TicketID
	lower := "grv" + ticket[3:]
	items, _, err = store.Grievances.List(ctx, repository.GrievanceFilter{Search: &lower, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created[1].ID, items[0].ID)

	meta := ".*"
	_, total, err = store.Grievances.List(ctx, repository.GrievanceFilter{DepartmentID: &dept, Search: &meta, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	low := domain.PriorityLow
	_, total, err = store.Grievances.List(ctx, repository.GrievanceFilter{DepartmentID: &dept, Priority: &low, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	pending := domain.StatusPending
	_, total, err = store.Grievances.List(ctx, repository.GrievanceFilter{FiledBy: &filer, Status: &pending, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func testAggregates(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dept := uuid.NewString()

	count, err := store.Grievances.CountByDepartment(ctx, dept)
	require.NoError(t, err)
	assert.Zero(t, count)
	counts, err := store.Grievances.StatusCounts(ctx, dept)
	require.NoError(t, err)
	assert.Empty(t, counts)

	for i := 0; i < 3; i++ {
		g := newGrievance(dept, uuid.NewString(), "9876543210", time.Now().UTC())
		require.NoError(t, store.Grievances.Create(ctx, g))
		if i == 0 {
			_, err := store.Grievances.UpdateStatus(ctx, g.ID, domain.StatusPending, domain.TimelineEntry{
				Status: domain.StatusResolved, UpdatedBy: g.FiledBy, UpdatedAt: time.Now().UTC(), Comment: "Fixed",
			})
			require.NoError(t, err)
		}
	}

	count, err = store.Grievances.CountByDepartment(ctx, dept)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	counts, err = store.Grievances.StatusCounts(ctx, dept)
	require.NoError(t, err)
	assert.Equal(t, map[domain.GrievanceStatus]int64{
		domain.StatusPending:  2,
		domain.StatusResolved: 1,
	}, counts)
}

func testDepartments(t *testing.T, store repository.Store) {
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	dept := &domain.Department{
		Name:         "Water Supply " + suffix,
		Description:  "Pipes and pumps",
		ContactEmail: "water@city.gov",
		ContactPhone: "0801234567",
	}
	require.NoError(t, store.Departments.Create(ctx, dept))
	require.NotEmpty(t, dept.ID)
	assert.False(t, dept.CreatedAt.IsZero())

	other := &domain.Department{Name: "Roads " + suffix, Description: "Potholes"}
	require.NoError(t, store.Departments.Create(ctx, other))

	head := uuid.NewString()
	dept.HeadOfDepartment = &head
	dept.Description = "Pipes, pumps and meters"
	require.NoError(t, store.Departments.Update(ctx, dept))

	got, err := store.Departments.GetByID(ctx, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pipes, pumps and meters", got.Description)
	require.NotNil(t, got.HeadOfDepartment)
	assert.Equal(t, head, *got.HeadOfDepartment)

	found, err := store.Departments.List(ctx, "SUPPLY "+suffix)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, dept.ID, found[0].ID)

	found, err = store.Departments.List(ctx, suffix)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, other.ID, found[0].ID)

	require.NoError(t, store.Departments.Delete(ctx, other.ID))
	_, err = store.Departments.GetByID(ctx, other.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Departments.Delete(ctx, other.ID), repository.ErrNotFound)
	assert.ErrorIs(t, store.Departments.Update(ctx, other), repository.ErrNotFound)
}

func testUsers(t *testing.T, store repository.Store) {
	ctx := context.Background()
	email := "user-" + uuid.NewString()[:8] + "@example.com"
	user := &domain.User{Name: "Ravi", Email: email, PasswordHash: "hash", Role: domain.RoleStaff}
	require.NoError(t, store.Users.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	dup := &domain.User{Name: "Ravi 2", Email: email, PasswordHash: "hash", Role: domain.RoleCitizen}
	assert.ErrorIs(t, store.Users.Create(ctx, dup), repository.ErrDuplicate)

	got, err := store.Users.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, domain.RoleStaff, got.Role)

	user.Name = "Ravi Kumar"
	require.NoError(t, store.Users.Update(ctx, user))
	got, err = store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", got.Name)

	all, err := store.Users.List(ctx)
	require.NoError(t, err)
	var listed bool
	for _, u := range all {
		if u.ID == user.ID {
			listed = true
		}
	}
	assert.True(t, listed)

	_, err = store.Users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Users.GetByEmail(ctx, "nobody-"+email)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
