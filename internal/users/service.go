package users

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/auth"
	"github.com/luciagrant/mercadito-backend/pkg/config"
	"github.com/luciagrant/mercadito-backend/pkg/db"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	"github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/security"
)

// RegisterInput creates a new customer account.
type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginInput authenticates an existing account.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries the minted token and its subject.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service handles registration and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

type service struct {
	repo        Repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// NewService wires the users service.
func NewService(repo Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "users repository is required")
	}
	if jwtCfg.Secret == "" {
		return nil, errors.New(errors.CodeInternal, "jwt secret is required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, passwordCfg: passwordCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, errors.New(errors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, errors.New(errors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Phone:        input.Phone,
		Role:         enums.UserRoleCustomer,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") || db.IsUniqueViolation(err, "users_email_key") {
			return nil, errors.New(errors.CodeConflict, "email is already registered")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "creating user")
	}

	return s.mint(created)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	return s.mint(user)
}

func (s *service) mint(user *models.User) (*AuthResult, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, time.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting token")
	}
	return &AuthResult{Token: token, User: user}, nil
}
