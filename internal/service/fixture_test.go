package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
)

type fixture struct {
	store       repository.Store
	dispatcher  events.Dispatcher
	published   []events.Event
	grievances  *GrievanceService
	departments *DepartmentService
	accounts    *AuthService
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		dispatcher: events.NewInMemoryDispatcher(nil),
		clock:      time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
	for _, eventType := range events.AllEventTypes {
		f.dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}
	f.grievances = NewGrievanceService(GrievanceDependencies{
		GrievanceRepo:  f.store.Grievances,
		DepartmentRepo: f.store.Departments,
		UserRepo:       f.store.Users,
		Dispatcher:     f.dispatcher,
		Clock:          f.now,
	})
	f.departments = NewDepartmentService(DepartmentDependencies{
		DepartmentRepo: f.store.Departments,
		GrievanceRepo:  f.store.Grievances,
		UserRepo:       f.store.Users,
	})
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", BcryptCost: 4}}
	f.accounts = NewAuthService(cfg, AuthDependencies{
		UserRepo:       f.store.Users,
		DepartmentRepo: f.store.Departments,
		TokenManager:   auth.NewTokenManager(cfg.Auth.JWTSecret, 0),
	})
	return f
}

// now advances one second per call so created records order deterministically.
func (f *fixture) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) department(t *testing.T, name string) *domain.Department {
	t.Helper()
	dept, err := f.departments.Create(context.Background(), DepartmentInput{Name: &name})
	require.NoError(t, err)
	return dept
}

func (f *fixture) user(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()
	user, err := f.accounts.CreateUser(context.Background(), CreateUserInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret1",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) file(t *testing.T, actor Actor, departmentID, phone string) *domain.Grievance {
	t.Helper()
	g, err := f.grievances.Create(context.Background(), actor, CreateGrievanceInput{
		Complainant: domain.Complainant{
			Name:    "Asha Rao",
			Phone:   phone,
			Address: "12 Lake Road",
		},
		DepartmentID: departmentID,
		Subject:      "Broken streetlight",
		Description:  "The streetlight near the park has been out for weeks.",
		Location:     "Ward 4",
	})
	require.NoError(t, err)
	return g
}

func citizen(id string) Actor {
	return Actor{ID: id, Role: domain.RoleCitizen}
}

func staff(id string) Actor {
	return Actor{ID: id, Role: domain.RoleStaff, ReadAny: true}
}
