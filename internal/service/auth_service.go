package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and account management.
type AuthService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	TokenManager   *auth.TokenManager
}

// CreateUserInput describes an account created by an operator.
type CreateUserInput struct {
	Name         string
	Email        string
	Password     string
	Role         domain.Role
	DepartmentID *string
}

// NewAuthService builds the service. A nil TokenManager is derived from cfg.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	return &AuthService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		tokenMgr:    tokens,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// Register creates a citizen account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, domain.Token, error) {
	user, err := s.CreateUser(ctx, CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleCitizen,
	})
	if err != nil {
		return nil, domain.Token{}, err
	}
	token, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Token, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Token{}, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, domain.Token{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthorized("Invalid credentials")
	}
	token, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// CreateUser stores a new account with any role.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "role", Message: "Invalid role"}})
	}
	if len(input.Password) < MinPasswordLength {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "password", Message: "Password must be at least 6 characters"}})
	}
	email := normalizeEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("User already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}
	if input.DepartmentID != nil && s.departments != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			return nil, notFoundOr(err, "department", *input.DepartmentID)
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("User already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Profile returns the account of userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	return user, nil
}

// UpdateProfile changes name and/or email of an account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, name, email *string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		normalized := normalizeEmail(*email)
		if normalized != user.Email {
			if existing, err := s.users.GetByEmail(ctx, normalized); err == nil && existing.ID != user.ID {
				return nil, apperrors.NewConflict("Email already in use", nil)
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.MapError(err)
			}
		}
		user.Email = normalized
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Email already in use", nil)
		}
		return nil, notFoundOr(err, "user", userID)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user", userID)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("Current password is incorrect")
	}
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "newPassword", Message: "Password must be at least 6 characters"}})
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return notFoundOr(err, "user", userID)
	}
	return nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Tokens exposes the token manager used to sign sessions.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
