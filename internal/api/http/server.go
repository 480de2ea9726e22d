package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/validation"
)

// ServerDependencies carries everything the HTTP surface needs.
type ServerDependencies struct {
	ServiceName      string
	Version          string
	RequestTimeout   time.Duration
	CORSAllowOrigins string

	Logger  *zap.Logger
	Metrics *observability.Metrics

	Grievances  *service.GrievanceService
	Departments *service.DepartmentService
	Accounts    *service.AuthService
	Auth        *auth.AuthMiddleware
	Health      map[string]handlers.Pinger
}

// NewServer builds the fiber app with middlewares and routes attached.
func NewServer(deps ServerDependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               deps.ServiceName,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, MiddlewareConfig{
		Timeout:          deps.RequestTimeout,
		CORSAllowOrigins: deps.CORSAllowOrigins,
	})

	validator := validation.New()
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.ServiceName, deps.Version, deps.Health, deps.Metrics),
		Users:          handlers.NewUsersHandler(deps.Accounts, validator),
		Grievances:     handlers.NewGrievancesHandler(deps.Grievances, deps.Auth.Policy(), validator),
		Departments:    handlers.NewDepartmentsHandler(deps.Departments, validator),
		AuthMiddleware: deps.Auth,
	})
	return app
}
