package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/notecove/notecove/internal/config"
	"github.com/notecove/notecove/internal/domain/note"
	"github.com/notecove/notecove/internal/domain/user"
	"github.com/notecove/notecove/internal/http/middlewares"
)

type NotesStore interface {
	Create(ctx context.Context, n note.Note) (note.Note, error)
	ListByUser(ctx context.Context, userID string) ([]note.Note, error)
	GetByID(ctx context.Context, id string) (note.Note, error)
	Update(ctx context.Context, id string, req note.UpdateNoteRequest) (note.Note, error)
	Delete(ctx context.Context, id string) error
}

type PrincipalResolver interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type NotesHandler struct {
	notes NotesStore
	users PrincipalResolver
}

func NewNotesHandler(notes NotesStore, users PrincipalResolver) *NotesHandler {
	return &NotesHandler{notes: notes, users: users}
}

// resolveOwner loads the full user row behind the session principal. The
// session only carries the username; the row may be gone if the account was
// removed after login.
func (h *NotesHandler) resolveOwner(ctx *gin.Context, cctx context.Context) (user.User, bool) {
	username, ok := middlewares.UsernameFromContext(ctx)

	if !ok || username == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return user.User{}, false
	}

	owner, err := h.users.GetByUsername(cctx, username)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return user.User{}, false
		}

		RespondInternal(ctx, "Could not resolve user")
		return user.User{}, false
	}

	return owner, true
}

func (h *NotesHandler) CreateNote(ctx *gin.Context) {
	var req note.CreateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	owner, ok := h.resolveOwner(ctx, cctx)

	if !ok {
		return
	}

	// the resolved session owner always wins over anything in the body
	created, err := h.notes.Create(cctx, note.NewFromCreateRequest(req, owner.ID))

	if err != nil {
		RespondInternal(ctx, "Could not create note")
		return
	}

	ctx.JSON(http.StatusOK, note.NewResponse(created, owner))
}

func (h *NotesHandler) ListNotes(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	owner, ok := h.resolveOwner(ctx, cctx)

	if !ok {
		return
	}

	notes, err := h.notes.ListByUser(cctx, owner.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list notes")
		return
	}

	items := make([]note.Response, 0, len(notes))

	for _, n := range notes {
		items = append(items, note.NewResponse(n, owner))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *NotesHandler) GetNoteById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !isUUID(id) {
		RespondBadRequest(ctx, "note id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	owner, ok := h.resolveOwner(ctx, cctx)

	if !ok {
		return
	}

	n, ok := h.loadOwned(ctx, cctx, id, owner)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, note.NewResponse(n, owner))
}

func (h *NotesHandler) UpdateNote(ctx *gin.Context) {
	id := ctx.Param("id")

	if !isUUID(id) {
		RespondBadRequest(ctx, "note id must be a valid UUID", nil)
		return
	}

	var req note.UpdateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	owner, ok := h.resolveOwner(ctx, cctx)

	if !ok {
		return
	}

	if _, ok := h.loadOwned(ctx, cctx, id, owner); !ok {
		return
	}

	updated, err := h.notes.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}

		RespondInternal(ctx, "Could not update note")
		return
	}

	ctx.JSON(http.StatusOK, note.NewResponse(updated, owner))
}

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	id := ctx.Param("id")

	if !isUUID(id) {
		RespondBadRequest(ctx, "note id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	owner, ok := h.resolveOwner(ctx, cctx)

	if !ok {
		return
	}

	if _, ok := h.loadOwned(ctx, cctx, id, owner); !ok {
		return
	}

	err := h.notes.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}

		RespondInternal(ctx, "Could not delete note")
		return
	}

	ctx.Status(http.StatusOK)
}

// loadOwned fetches the note and enforces the ownership invariant: a note
// that exists but belongs to someone else fails with 403, never a silent
// filter. The store itself does not check ownership.
func (h *NotesHandler) loadOwned(ctx *gin.Context, cctx context.Context, id string, owner user.User) (note.Note, bool) {
	n, err := h.notes.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return note.Note{}, false
		}

		RespondInternal(ctx, "Could not fetch note")
		return note.Note{}, false
	}

	if n.UserID != owner.ID {
		RespondForbidden(ctx, "Access denied: Note does not belong to user")
		return note.Note{}, false
	}

	return n, true
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
