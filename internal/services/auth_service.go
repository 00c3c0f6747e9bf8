package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clockpro/backend/internal/models"
	mongorepo "github.com/clockpro/backend/internal/repositories/mongo"
	"github.com/clockpro/backend/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Guest(ctx context.Context) (*models.User, string, error)
	Verify(ctx context.Context, userID string) (*models.User, error)
	Refresh(ctx context.Context, userID string) (string, error)
}

type authService struct {
	users mongorepo.UserRepository
}

func NewAuthService(users mongorepo.UserRepository) AuthService {
	return &authService{users: users}
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	const op = "AuthService.Register"

	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "email, password, and name are required", nil)
	}
	if !strings.Contains(email, "@") {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "please enter a valid email", nil)
	}
	if len(password) < 6 {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "password must be at least 6 characters long", nil)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "unable to create account", err)
	}

	user := &models.User{
		Email:        email,
		Password:     hash,
		Name:         name,
		AuthProvider: models.AuthProviderLocal,
		Settings:     models.DefaultSettings(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, utils.ErrDuplicateEmail) {
			return nil, "", utils.E(utils.CodeConflict, op, "a user with this email already exists", err)
		}
		return nil, "", utils.E(utils.CodeInternal, op, "unable to create account", err)
	}

	token, err := utils.SignToken(user.ID.Hex(), user.Email, false)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "unable to issue token", err)
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "AuthService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			// Same message as a bad password so the response does not leak
			// which accounts exist.
			return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid email or password", err)
		}
		return nil, "", utils.E(utils.CodeInternal, op, "unable to log in", err)
	}
	if err := utils.CheckPassword(user.Password, password); err != nil {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid email or password", err)
	}

	token, err := utils.SignToken(user.ID.Hex(), user.Email, false)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "unable to issue token", err)
	}
	return user, token, nil
}

func (s *authService) Guest(ctx context.Context) (*models.User, string, error) {
	const op = "AuthService.Guest"

	suffix := uuid.NewString()[:8]
	user := &models.User{
		Email:        fmt.Sprintf("guest_%d_%s@temp.local", time.Now().Unix(), suffix),
		Name:         fmt.Sprintf("Guest_%d", time.Now().Unix()),
		AuthProvider: models.AuthProviderGuest,
		Settings:     models.DefaultSettings(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "unable to create guest session", err)
	}

	token, err := utils.SignToken(user.ID.Hex(), user.Email, true)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "unable to issue token", err)
	}
	return user, token, nil
}

func (s *authService) Verify(ctx context.Context, userID string) (*models.User, error) {
	const op = "AuthService.Verify"

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user account no longer exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to verify token", err)
	}
	return user, nil
}

func (s *authService) Refresh(ctx context.Context, userID string) (string, error) {
	const op = "AuthService.Refresh"

	user, err := s.Verify(ctx, userID)
	if err != nil {
		return "", err
	}

	token, err := utils.SignToken(user.ID.Hex(), user.Email, user.AuthProvider == models.AuthProviderGuest)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "unable to refresh token", err)
	}
	return token, nil
}
