package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge/internal/usage"
)

type User struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	PasswordHash string         `json:"-"`
	Plan         usage.PlanTier `json:"plan"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
