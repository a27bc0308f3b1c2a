package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"billed/internal/common"
	"billed/internal/common/security"
	"billed/internal/domain/model"
	"billed/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, log: log}
}

type SignupRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Type     model.UserType `json:"type"`
}

type LoginRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Type     model.UserType `json:"type"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"jwt"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", req.Email, common.ErrValidation)
	}
	if req.Type == "" {
		req.Type = model.UserTypeEmployee
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown user type %q: %w", req.Type, common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Type:           req.Type,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo might return common.ErrConflict
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info("user signed up", zap.String("email", user.Email), zap.String("type", string(user.Type)))

	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}
	// An employee account cannot open the admin space and vice versa.
	if req.Type != "" && req.Type != user.Type {
		return nil, common.ErrUnauthorized
	}

	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *model.User) (*AuthResponse, error) {
	token, err := security.GenerateToken(user.ID, user.Email, string(user.Type))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}
