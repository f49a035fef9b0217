package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carhub/internal/auth"
	"carhub/internal/model"
	"carhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	userRepo repository.UserRepository
	issuer   *auth.TokenIssuer
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, issuer *auth.TokenIssuer, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if req.Username == "" {
		return nil, model.ValidationError("username is required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, model.ValidationError("email address is invalid")
	}
	if len(req.Password) < 8 {
		return nil, model.ValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	u := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Role:         model.RoleClient,
		Age:          req.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.ID.String()).Msg("user registered")

	return u, nil
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Blocked {
		// Same error for unknown email, wrong password and blocked account.
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", u.ID.String()).Msg("password mismatch")
		return nil, model.ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.ID.String()).Msg("user logged in")

	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      u.Summary(),
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NotFoundError("user")
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, page model.Page) ([]model.User, *model.Pagination, error) {
	page = page.Normalize()

	users, total, err := s.userRepo.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}

	pagination := model.NewPagination(page, total)
	return users, &pagination, nil
}

func (s *userService) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*model.User, error) {
	updated, err := s.userRepo.SetBlocked(ctx, id, blocked)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, model.NotFoundError("user")
	}

	s.logger.Info().Str("user_id", id.String()).Bool("blocked", blocked).
		Msg("user blocked flag updated")

	return s.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.userRepo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return model.NotFoundError("user")
	}
	return nil
}
