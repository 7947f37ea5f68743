package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleCashier Role = "Cashier"
)

type AccountStatus string

const (
	StatusPending  AccountStatus = "Pending"
	StatusApproved AccountStatus = "Approved"
	StatusRejected AccountStatus = "Rejected"
)

// User is an account in the directory. Only Approved accounts may log in.
type User struct {
	BaseModel
	Username     string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password     string        `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, hidden from JSON
	Role         Role          `gorm:"type:varchar(20);not null" json:"role"`
	Status       AccountStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	TokenVersion string        `gorm:"type:varchar(255);default:''" json:"-"` // rotated on login/logout
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Principal returns the authenticated identity carried into core operations.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID        uuid.UUID     `json:"id"`
	Username  string        `json:"username"`
	Role      Role          `json:"role"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	CreatedBy string        `json:"created_by,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		CreatedBy: u.CreatedBy,
	}
}
