package handler

import (
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUsers lists every account, newest first
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListAccounts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// CreateUser handles account creation by an admin
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	user, err := h.userService.CreateAccount(c.UserContext(), &req, principal(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user.ToResponse(),
	})
}

// ApproveUser PUT /api/v1/users/:id/approve
func (h *UserHandler) ApproveUser(c *fiber.Ctx) error {
	return h.setStatus(c, model.StatusApproved)
}

// RejectUser PUT /api/v1/users/:id/reject
func (h *UserHandler) RejectUser(c *fiber.Ctx) error {
	return h.setStatus(c, model.StatusRejected)
}

func (h *UserHandler) setStatus(c *fiber.Ctx, status model.AccountStatus) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.SetStatus(c.UserContext(), id, status, principal(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User " + user.Username + " is now " + string(user.Status),
		"data":    user.ToResponse(),
	})
}

// DeleteUser removes an account other than the caller's
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.userService.DeleteAccount(c.UserContext(), id, principal(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
