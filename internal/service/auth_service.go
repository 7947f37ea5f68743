package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/jwt"
)

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, req *RegisterRequest) (*model.User, error)
	Logout(ctx context.Context, principal model.Principal) error
	ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error)
	ChangePassword(ctx context.Context, principal model.Principal, req *ChangePasswordRequest) error
	ResetPassword(ctx context.Context, username, newPassword string) error
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type authService struct {
	userRepo          repository.UserRepository
	issuer            *jwt.Issuer
	allowRegistration bool
}

func NewAuthService(userRepo repository.UserRepository, issuer *jwt.Issuer, allowRegistration bool) AuthService {
	return &authService{
		userRepo:          userRepo,
		issuer:            issuer,
		allowRegistration: allowRegistration,
	}
}

// Authenticate checks, in order: account exists, not pending, not rejected, password.
// The password is never compared for accounts that are not approved.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	switch user.Status {
	case model.StatusPending:
		return nil, ErrAccountPending
	case model.StatusRejected:
		return nil, ErrAccountRejected
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a new version invalidates any token issued before.
	version := uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	token, err := s.issuer.GenerateToken(user.ID, user.Username, string(user.Role), version)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

// Register creates a Pending cashier awaiting approval.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	if !s.allowRegistration {
		return nil, ErrRegistrationClosed
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	return createUser(ctx, s.userRepo, req.Username, req.Password, model.RoleCashier, model.StatusPending, req.Username)
}

func (s *authService) Logout(ctx context.Context, principal model.Principal) error {
	if err := s.userRepo.UpdateTokenVersion(ctx, principal.UserID, uuid.NewString()); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return nil
}

// ValidateToken resolves a bearer token to the principal it was issued for.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error) {
	claims, err := s.issuer.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}
	if user.Status != model.StatusApproved {
		return nil, fmt.Errorf("%w: account is %s", ErrUnauthorized, user.Status)
	}

	p := user.Principal()
	return &p, nil
}

func (s *authService) ChangePassword(ctx context.Context, principal model.Principal, req *ChangePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, user, req.NewPassword)
}

// ResetPassword is the operator path: no current password, sessions are revoked.
func (s *authService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("password", "must be at least 6")
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *authService) setPassword(ctx context.Context, user *model.User, password string) error {
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.NewString())
}
