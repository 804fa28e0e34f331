package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold. Guru is a teacher, murid a student.
const (
	RoleGuru  = "guru"
	RoleMurid = "murid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
