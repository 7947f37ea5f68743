package service

import (
	"context"
	"errors"
	"fmt"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	CreateAccount(ctx context.Context, req *CreateAccountRequest, actor model.Principal) (*model.User, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status model.AccountStatus, actor model.Principal) (*model.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID, actor model.Principal) error
	ListAccounts(ctx context.Context) ([]model.UserResponse, error)
}

type CreateAccountRequest struct {
	Username string              `json:"username" validate:"required,min=3,max=100"`
	Password string              `json:"password" validate:"required,min=6"`
	Role     model.Role          `json:"role" validate:"required,oneof=Admin Cashier"`
	Status   model.AccountStatus `json:"status" validate:"omitempty,oneof=Pending Approved Rejected"`
}

type userService struct {
	userRepo repository.UserRepository
	wsHub    *ws.Hub
}

func NewUserService(userRepo repository.UserRepository, hub *ws.Hub) UserService {
	return &userService{
		userRepo: userRepo,
		wsHub:    hub,
	}
}

// CreateAccount adds an account on behalf of an admin. Accounts created this
// way are Approved unless a status is given.
func (s *userService) CreateAccount(ctx context.Context, req *CreateAccountRequest, actor model.Principal) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.StatusApproved
	}

	user, err := createUser(ctx, s.userRepo, req.Username, req.Password, req.Role, status, actor.Username)
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:    ws.EventAccountUpdate,
		Action:  "account_created",
		Data:    user.ToResponse(),
		Actor:   actor.Username,
		Message: fmt.Sprintf("%s created account '%s'", actor.Username, user.Username),
	})
	return user, nil
}

// SetStatus moves an account to any status. Repeating a transition is harmless.
func (s *userService) SetStatus(ctx context.Context, userID uuid.UUID, status model.AccountStatus, actor model.Principal) (*model.User, error) {
	switch status {
	case model.StatusPending, model.StatusApproved, model.StatusRejected:
	default:
		return nil, invalid("status", "must be one of: Pending Approved Rejected")
	}

	if err := s.userRepo.UpdateStatus(ctx, userID, status, actor.Username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	s.wsHub.Publish(ws.Event{
		Type:    ws.EventAccountUpdate,
		Action:  "status_changed",
		Data:    user.ToResponse(),
		Actor:   actor.Username,
		Message: fmt.Sprintf("%s set '%s' to %s", actor.Username, user.Username, status),
	})
	return user, nil
}

// DeleteAccount removes another user's account. Admins can never remove themselves.
func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID, actor model.Principal) error {
	if userID == actor.UserID {
		return ErrSelfDelete
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.wsHub.Publish(ws.Event{
		Type:   ws.EventAccountUpdate,
		Action: "account_deleted",
		Data:   map[string]interface{}{"id": userID},
		Actor:  actor.Username,
	})
	return nil
}

func (s *userService) ListAccounts(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func createUser(ctx context.Context, repo repository.UserRepository, username, password string, role model.Role, status model.AccountStatus, createdBy string) (*model.User, error) {
	existing, err := repo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, ErrDuplicateUsername
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user := &model.User{
		Username: username,
		Role:     role,
		Status:   status,
	}
	user.CreatedBy = createdBy
	user.UpdatedBy = createdBy

	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// The unique index still decides when two requests race past the check above.
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
