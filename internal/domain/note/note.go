package note

import (
	"errors"
	"time"

	"github.com/notecove/notecove/internal/domain/user"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("note not found")

type CreateNoteRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"omitempty"`
}

// UpdateNoteRequest is a full overwrite of title/content; owner and id are
// never taken from the body.
type UpdateNoteRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"omitempty"`
}

// Response is the wire shape for notes: the raw entity minus the owner id,
// with a reduced user summary nested instead.
type Response struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	User      user.Summary `json:"user"`
}

func NewResponse(n Note, owner user.User) Response {
	return Response{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		User:      owner.Summary(),
	}
}
