package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Grievances     *handlers.GrievancesHandler
	Departments    *handlers.DepartmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	guard := cfg.AuthMiddleware

	users := api.Group("/users", guard.Handle)
	users.Get("/profile", cfg.Users.Profile)
	users.Put("/profile", cfg.Users.UpdateProfile)
	users.Put("/password", cfg.Users.ChangePassword)
	users.Get("/", guard.Require(auth.CapUserList), cfg.Users.List)

	grievances := api.Group("/grievances", guard.Handle)
	grievances.Post("/", guard.Require(auth.CapGrievanceCreate), cfg.Grievances.Create)
	grievances.Get("/", guard.Require(auth.CapGrievanceReadOwn), cfg.Grievances.List)
	grievances.Get("/:id", guard.Require(auth.CapGrievanceReadOwn), cfg.Grievances.Get)
	grievances.Patch("/:id/status", guard.Require(auth.CapGrievanceUpdateStatus), cfg.Grievances.UpdateStatus)
	grievances.Post("/:id/comments", guard.Require(auth.CapGrievanceComment), cfg.Grievances.AddComment)
	grievances.Post("/:id/assign", guard.Require(auth.CapGrievanceAssign), cfg.Grievances.Assign)

	departments := api.Group("/departments", guard.Handle)
	departments.Get("/", guard.Require(auth.CapDepartmentRead), cfg.Departments.List)
	departments.Post("/", guard.Require(auth.CapDepartmentManage), cfg.Departments.Create)
	departments.Get("/:id", guard.Require(auth.CapDepartmentRead), cfg.Departments.Get)
	departments.Put("/:id", guard.Require(auth.CapDepartmentManage), cfg.Departments.Update)
	departments.Delete("/:id", guard.Require(auth.CapDepartmentManage), cfg.Departments.Delete)
	departments.Get("/:id/stats", guard.Require(auth.CapDepartmentStats), cfg.Departments.Stats)
}
