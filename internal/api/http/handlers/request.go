package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/validation"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

type normalizer interface {
	Normalize()
}

// bindJSON decodes the body into req and validates it.
func bindJSON(c *fiber.Ctx, v *validation.Validator, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	return v.Struct(req)
}

// bindQuery decodes query parameters into req and validates it. Parameters
// with an empty value are treated as absent.
func bindQuery(c *fiber.Ctx, v *validation.Validator, req any) error {
	args := c.Context().QueryArgs()
	var empty []string
	args.VisitAll(func(key, value []byte) {
		if len(bytes.TrimSpace(value)) == 0 {
			empty = append(empty, string(key))
		}
	})
	for _, key := range empty {
		args.Del(key)
	}
	if err := c.QueryParser(req); err != nil {
		return apperrors.NewValidationError("invalid query parameters", nil)
	}
	return v.Struct(req)
}

// idParam returns the :id path parameter once it parses as a UUID.
func idParam(c *fiber.Ctx, v *validation.Validator) (string, error) {
	id := c.Params("id")
	if err := v.Var("id", id, "required,uuid"); err != nil {
		return "", err
	}
	return id, nil
}

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func actorFor(principal *auth.Principal, policy *auth.Policy) service.Actor {
	return service.Actor{
		ID:      principal.User.ID,
		Role:    principal.Role,
		ReadAny: principal.Can(policy, auth.CapGrievanceReadAny),
	}
}
