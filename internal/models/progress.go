package models

import (
	"time"

	"github.com/google/uuid"
)

// Learning status for a hijaiyah letter.
const (
	StatusBelum   = "belum"   // not started
	StatusBelajar = "belajar" // in progress
	StatusSelesai = "selesai" // completed
)

// LetterProgress tracks a student's learning status for one letter.
type LetterProgress struct {
	UserID    uuid.UUID `json:"user_id"`
	Letter    string    `json:"letter"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TestScore is a student's best score for one letter's test (0-100).
type TestScore struct {
	UserID    uuid.UUID `json:"user_id"`
	Letter    string    `json:"letter"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}
