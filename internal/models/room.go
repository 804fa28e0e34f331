package models

import (
	"time"

	"github.com/google/uuid"
)

// Room is a teacher-created class that students join with a short code.
type Room struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"join_code"`
	TeacherID uuid.UUID `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}
