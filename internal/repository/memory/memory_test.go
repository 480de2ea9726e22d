package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	"github.com/spec-kit/grievance-service/internal/repository/repositorytest"
)

func TestMemoryStoreContract(t *testing.T) {
	repositorytest.Run(t, memory.NewStore())
}

func TestTicketSequenceRestartsPerYear(t *testing.T) {
	repo := memory.NewGrievanceRepository()
	ctx := context.Background()
	create := func(at time.Time) string {
		g := &domain.Grievance{
			DepartmentID: "d1",
			Status:       domain.StatusPending,
			Timeline:     []domain.TimelineEntry{{Status: domain.StatusPending}},
			CreatedAt:    at,
		}
		require.NoError(t, repo.Create(ctx, g))
		return g.TicketID
	}

	assert.Equal(t, "GRV-2024-00001", create(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "GRV-2024-00002", create(time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)))
	assert.Equal(t, "GRV-2025-00001", create(time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC)))
}

func TestReturnedGrievancesAreCopies(t *testing.T) {
	repo := memory.NewGrievanceRepository()
	ctx := context.Background()
	g := &domain.Grievance{
		DepartmentID: "d1",
		Status:       domain.StatusPending,
		Timeline:     []domain.TimelineEntry{{Status: domain.StatusPending}},
	}
	require.NoError(t, repo.Create(ctx, g))

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	got.Timeline[0].Comment = "tampered"
	got.Status = domain.StatusRejected

	again, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Timeline[0].Comment)
	assert.Equal(t, domain.StatusPending, again.Status)
}
