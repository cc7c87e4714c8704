package models

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptEntry is one archived turn. Entries are written for auditing and
// never loaded back into the live conversation.
type TranscriptEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	RequestID  string    `json:"request_id" db:"request_id"`
	Role       Role      `json:"role" db:"role"`
	Content    string    `json:"content" db:"content"`
	Position   int       `json:"position" db:"position"`
	RolledBack bool      `json:"rolled_back" db:"rolled_back"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
