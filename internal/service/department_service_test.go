package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

func TestStatsComputesResolutionRate(t *testing.T) {
	f := newFixture(t)
	dept := f.department(t, "Public Works")
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		g := f.file(t, citizen("u1"), dept.ID, "9876543210")
		switch {
		case i < 4:
			_, err := f.grievances.Transition(ctx, staff("s1"), g.ID, domain.StatusResolved, "Done")
			require.NoError(t, err)
		case i < 6:
			_, err := f.grievances.Transition(ctx, staff("s1"), g.ID, domain.StatusInProgress, "Working")
			require.NoError(t, err)
		}
	}

	stats, err := f.departments.Stats(ctx, dept.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, stats.TotalGrievances)
	assert.EqualValues(t, 4, stats.ResolvedGrievances)
	assert.InDelta(t, 40.0, stats.ResolutionRate, 1e-9)
	assert.Equal(t, map[domain.GrievanceStatus]int64{
		domain.StatusResolved:   4,
		domain.StatusInProgress: 2,
		domain.StatusPending:    4,
	}, stats.StatusDistribution)
}

func TestStatsWithoutGrievances(t *testing.T) {
	f := newFixture(t)
	dept := f.department(t, "Public Works")

	stats, err := f.departments.Stats(context.Background(), dept.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalGrievances)
	assert.Zero(t, stats.ResolutionRate)
	assert.Empty(t, stats.StatusDistribution)

	_, err = f.departments.Stats(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestDeleteBlockedByGrievances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	busy := f.department(t, "Health")
	idle := f.department(t, "Parks")
	f.file(t, citizen("u1"), busy.ID, "9876543210")

	err := f.departments.Delete(ctx, busy.ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	_, err = f.departments.Get(ctx, busy.ID)
	assert.NoError(t, err)

	require.NoError(t, f.departments.Delete(ctx, idle.ID))
	_, err = f.departments.Get(ctx, idle.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	err = f.departments.Delete(ctx, idle.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestDepartmentPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	name, desc, email := "Transport", "Buses and depots", "transport@city.gov"
	dept, err := f.departments.Create(ctx, DepartmentInput{Name: &name, Description: &desc, ContactEmail: &email})
	require.NoError(t, err)

	phone := "0801234567"
	updated, err := f.departments.Update(ctx, dept.ID, DepartmentInput{ContactPhone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Transport", updated.Name)
	assert.Equal(t, "Buses and depots", updated.Description)
	assert.Equal(t, phone, updated.ContactPhone)

	head := f.user(t, "meera", domain.RoleStaff)
	updated, err = f.departments.Update(ctx, dept.ID, DepartmentInput{HeadOfDepartment: &head.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.HeadOfDepartment)
	assert.Equal(t, head.ID, *updated.HeadOfDepartment)

	unknown := "0b1d6c4e-2f0a-4c55-8a1b-3e9f7d6c5b4a"
	_, err = f.departments.Update(ctx, dept.ID, DepartmentInput{HeadOfDepartment: &unknown})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestDepartmentListSearch(t *testing.T) {
	f := newFixture(t)
	f.department(t, "Water Supply")
	f.department(t, "Roads")
	f.department(t, "Waste Management")

	all, err := f.departments.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Roads", all[0].Name)

	found, err := f.departments.List(context.Background(), "wa")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Waste Management", found[0].Name)
	assert.Equal(t, "Water Supply", found[1].Name)
}

func TestDepartmentCreateRequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := f.departments.Create(context.Background(), DepartmentInput{})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
