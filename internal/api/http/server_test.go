package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	"github.com/spec-kit/grievance-service/internal/service"
)

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	admin   string
	staff   string
	citizen string
	other   string
	staffID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "handler-secret", BcryptCost: 4}}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, 0)
	accounts := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:       store.Users,
		DepartmentRepo: store.Departments,
		TokenManager:   tokens,
	})

	ts := &testServer{tokens: tokens}
	ts.app = NewServer(ServerDependencies{
		ServiceName: "grievance-service",
		Version:     "test",
		Metrics:     observability.NewMetrics(),
		Grievances: service.NewGrievanceService(service.GrievanceDependencies{
			GrievanceRepo:  store.Grievances,
			DepartmentRepo: store.Departments,
			UserRepo:       store.Users,
		}),
		Departments: service.NewDepartmentService(service.DepartmentDependencies{
			DepartmentRepo: store.Departments,
			GrievanceRepo:  store.Grievances,
			UserRepo:       store.Users,
		}),
		Accounts: accounts,
		Auth:     auth.NewAuthMiddleware(tokens, store.Users, auth.DefaultPolicy()),
	})

	issue := func(name string, role domain.Role) (string, string) {
		user, err := accounts.CreateUser(context.Background(), service.CreateUserInput{
			Name:     name,
			Email:    name + "@example.com",
			Password: "secret1",
			Role:     role,
		})
		require.NoError(t, err)
		token, err := tokens.GenerateToken(user.ID, user.Role)
		require.NoError(t, err)
		return token.Value, user.ID
	}
	ts.admin, _ = issue("admin", domain.RoleAdmin)
	ts.staff, ts.staffID = issue("officer", domain.RoleStaff)
	ts.citizen, _ = issue("citizen", domain.RoleCitizen)
	ts.other, _ = issue("neighbour", domain.RoleCitizen)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "body has no data object: %v", body)
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (ts *testServer) createDepartment(t *testing.T, name string) string {
	t.Helper()
	status, body := ts.do(t, fiber.MethodPost, "/api/departments", ts.admin, map[string]any{
		"name":         name,
		"description":  "Handles " + name,
		"contactEmail": "desk@city.gov",
		"contactPhone": "0801234567",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	return data(t, body)["id"].(string)
}

func (ts *testServer) fileGrievance(t *testing.T, token, departmentID, phone string) map[string]any {
	t.Helper()
	status, body := ts.do(t, fiber.MethodPost, "/api/grievances", token, map[string]any{
		"name":        "Asha Rao",
		"phone":       phone,
		"address":     "12 Lake Road",
		"department":  departmentID,
		"subject":     "Water leakage",
		"description": "Main pipe has been leaking for three days now.",
		"location":    "Ward 7",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	return data(t, body)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = ts.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = ts.do(t, fiber.MethodGet, "/health/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, data(t, body), "requests")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(t, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Meera Iyer", "email": "meera@example.com", "password": "secret1",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	user := data(t, body)["user"].(map[string]any)
	assert.Equal(t, "citizen", user["role"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotEmpty(t, data(t, body)["token"])

	status, body = ts.do(t, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Meera Iyer", "email": "MEERA@example.com", "password": "secret1",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, _ = ts.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "meera@example.com", "password": "wrong-one",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = ts.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "meera@example.com", "password": "secret1",
	})
	require.Equal(t, fiber.StatusOK, status)
	token := data(t, body)["token"].(string)

	status, body = ts.do(t, fiber.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "meera@example.com", data(t, body)["email"])
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(t, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Me", "email": "nope", "password": "123",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Len(t, details["errors"], 3)
}

func TestAuthenticationRequired(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(t, fiber.MethodGet, "/api/grievances", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = ts.do(t, fiber.MethodGet, "/api/grievances", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestGrievanceLifecycle(t *testing.T) {
	ts := newTestServer(t)
	deptID := ts.createDepartment(t, "Water Supply")

	created := ts.fileGrievance(t, ts.citizen, deptID, "9876543210")
	id := created["id"].(string)
	assert.Regexp(t, `^GRV-\d{4}-\d{5}$`, created["ticketId"])
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "medium", created["priority"])
	assert.Len(t, created["timeline"], 1)

	status, body := ts.do(t, fiber.MethodPatch, "/api/grievances/"+id+"/status", ts.citizen, map[string]any{
		"status": "resolved", "comment": "Self-fixed",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = ts.do(t, fiber.MethodPatch, "/api/grievances/"+id+"/status", ts.staff, map[string]any{
		"status": "resolved", "comment": "Fixed",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	updated := data(t, body)
	assert.Equal(t, "resolved", updated["status"])
	timeline := updated["timeline"].([]any)
	require.Len(t, timeline, 2)
	last := timeline[1].(map[string]any)
	assert.Equal(t, "resolved", last["status"])
	assert.Equal(t, "Fixed", last["comment"])
	assert.Equal(t, ts.staffID, last["updatedBy"])

	status, body = ts.do(t, fiber.MethodPost, "/api/grievances/"+id+"/comments", ts.citizen, map[string]any{"text": "Thank you"})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Len(t, data(t, body)["comments"], 1)

	status, body = ts.do(t, fiber.MethodPost, "/api/grievances/"+id+"/assign", ts.staff, map[string]any{"userId": ts.staffID})
	require.Equal(t, fiber.StatusOK, status, body)
	assigned := data(t, body)
	assert.Equal(t, ts.staffID, assigned["assignedTo"])
	assert.Equal(t, "resolved", assigned["status"])

	status, _ = ts.do(t, fiber.MethodGet, "/api/grievances/"+id, ts.other, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = ts.do(t, fiber.MethodGet, "/api/grievances/"+id, ts.citizen, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestGrievanceStatusValidation(t *testing.T) {
	ts := newTestServer(t)
	deptID := ts.createDepartment(t, "Roads")
	id := ts.fileGrievance(t, ts.citizen, deptID, "9876543210")["id"].(string)

	status, body := ts.do(t, fiber.MethodPatch, "/api/grievances/"+id+"/status", ts.staff, map[string]any{
		"status": "closed", "comment": "",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = ts.do(t, fiber.MethodPatch, "/api/grievances/not-a-uuid/status", ts.staff, map[string]any{
		"status": "resolved", "comment": "Fixed",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = ts.do(t, fiber.MethodPatch, "/api/grievances/7e57d004-2b97-4e7a-b45f-5387367791cd/status", ts.staff, map[string]any{
		"status": "resolved", "comment": "Fixed",
	})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = ts.do(t, fiber.MethodPatch, "/api/grievances/"+id+"/status", ts.staff, map[string]any{
		"status": "resolved", "comment": "   ",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = ts.do(t, fiber.MethodPost, "/api/grievances/"+id+"/comments", ts.citizen, map[string]any{"text": "\t \n"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestGrievanceListing(t *testing.T) {
	ts := newTestServer(t)
	deptID := ts.createDepartment(t, "Electricity")
	ts.fileGrievance(t, ts.citizen, deptID, "9876543210")
	ts.fileGrievance(t, ts.citizen, deptID, "9123456789")
	ts.fileGrievance(t, ts.other, deptID, "9000000000")

	status, body := ts.do(t, fiber.MethodGet, "/api/grievances?search=987654", ts.staff, nil)
	require.Equal(t, fiber.StatusOK, status)
	page := data(t, body)
	assert.EqualValues(t, 1, page["total"])

	status, body = ts.do(t, fiber.MethodGet, "/api/grievances?limit=2&page=2", ts.staff, nil)
	require.Equal(t, fiber.StatusOK, status)
	page = data(t, body)
	assert.EqualValues(t, 3, page["total"])
	assert.EqualValues(t, 2, page["totalPages"])
	assert.Len(t, page["items"], 1)

	status, body = ts.do(t, fiber.MethodGet, "/api/grievances", ts.citizen, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, data(t, body)["total"])

	status, body = ts.do(t, fiber.MethodGet, "/api/grievances?page=&limit=&status=", ts.staff, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	page = data(t, body)
	assert.EqualValues(t, 1, page["page"])
	assert.EqualValues(t, 10, page["limit"])
	assert.EqualValues(t, 3, page["total"])

	for _, q := range []string{"limit=0", "limit=101", "page=0", "status=closed"} {
		status, _ = ts.do(t, fiber.MethodGet, "/api/grievances?"+q, ts.staff, nil)
		assert.Equal(t, fiber.StatusBadRequest, status, q)
	}
}

func TestDepartmentEndpoints(t *testing.T) {
	ts := newTestServer(t)
	deptID := ts.createDepartment(t, "Sanitation")

	status, _ := ts.do(t, fiber.MethodPost, "/api/departments", ts.staff, map[string]any{
		"name": "Parks", "description": "Parks", "contactEmail": "p@city.gov", "contactPhone": "0801234567",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := ts.do(t, fiber.MethodPut, "/api/departments/"+deptID, ts.admin, map[string]any{"contactPhone": "0807654321"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Sanitation", data(t, body)["name"])
	assert.Equal(t, "0807654321", data(t, body)["contactPhone"])

	status, body = ts.do(t, fiber.MethodPut, "/api/departments/"+deptID, ts.admin, map[string]any{"headOfDepartment": ts.staffID})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, ts.staffID, data(t, body)["headOfDepartment"])

	status, body = ts.do(t, fiber.MethodPut, "/api/departments/"+deptID, ts.admin, map[string]any{"headOfDepartment": nil})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, ts.staffID, data(t, body)["headOfDepartment"])

	status, body = ts.do(t, fiber.MethodPut, "/api/departments/"+deptID, ts.admin, map[string]any{"headOfDepartment": ""})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Nil(t, data(t, body)["headOfDepartment"])

	status, body = ts.do(t, fiber.MethodPut, "/api/departments/"+deptID, ts.admin, map[string]any{"headOfDepartment": "nope"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	id := ts.fileGrievance(t, ts.citizen, deptID, "9876543210")["id"].(string)
	ts.fileGrievance(t, ts.citizen, deptID, "9876543211")
	_, _ = ts.do(t, fiber.MethodPatch, "/api/grievances/"+id+"/status", ts.staff, map[string]any{"status": "resolved", "comment": "Done"})

	status, _ = ts.do(t, fiber.MethodGet, "/api/departments/"+deptID+"/stats", ts.citizen, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = ts.do(t, fiber.MethodGet, "/api/departments/"+deptID+"/stats", ts.staff, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := data(t, body)
	assert.EqualValues(t, 2, stats["totalGrievances"])
	assert.EqualValues(t, 1, stats["resolvedGrievances"])
	assert.EqualValues(t, 50, stats["resolutionRate"])
	assert.Equal(t, map[string]any{"pending": float64(1), "resolved": float64(1)}, stats["statusDistribution"])

	status, body = ts.do(t, fiber.MethodDelete, "/api/departments/"+deptID, ts.admin, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	emptyID := ts.createDepartment(t, "Libraries")
	status, _ = ts.do(t, fiber.MethodDelete, "/api/departments/"+emptyID, ts.admin, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = ts.do(t, fiber.MethodGet, "/api/departments/"+emptyID, ts.citizen, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = ts.do(t, fiber.MethodGet, "/api/departments?search=sani", ts.citizen, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestUserListRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	status, _ := ts.do(t, fiber.MethodGet, "/api/users", ts.staff, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := ts.do(t, fiber.MethodGet, "/api/users", ts.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	users := body["data"].([]any)
	assert.Len(t, users, 4)
	for _, u := range users {
		assert.NotContains(t, u.(map[string]any), "passwordHash")
	}
}

func TestUnknownRouteRendersErrorEnvelope(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(t, fiber.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}
