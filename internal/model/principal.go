package model

import "github.com/google/uuid"

// Principal is the authenticated caller of a core operation.
type Principal struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// SystemPrincipal is used by seeding and operator tooling.
var SystemPrincipal = Principal{Username: "system", Role: RoleAdmin}
