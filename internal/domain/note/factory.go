package note

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds a Note owned by userID. Whatever owner the
// client may have sent is irrelevant; the session principal always wins.
func NewFromCreateRequest(req CreateNoteRequest, userID string) Note {
	now := time.Now().UTC()

	return Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
