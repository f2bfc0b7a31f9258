package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a wallet owner. Authentication metadata lives here; everything
// else about identity is out of scope for the ledger.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Argon2id encoded hash, never exposed
	CreatedAt    time.Time `json:"created_at"`
}
