package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notecove/notecove/internal/domain/note"
	"github.com/notecove/notecove/internal/observability"
)

// NotesRepo does not enforce ownership; callers must check the owner before
// acting on a row returned by GetByID.
type NotesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{pool: pool, prom: prom}
}

func (r *NotesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *NotesRepo) Create(ctx context.Context, n note.Note) (note.Note, error) {
	err := r.observe("notes.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO notes (id, title, content, user_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			n.ID, n.Title, n.Content, n.UserID, n.CreatedAt, n.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) ListByUser(ctx context.Context, userID string) (notes []note.Note, err error) {
	var rows pgx.Rows

	err = r.observe("notes.list_by_user", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, title, content, user_id, created_at, updated_at
			 FROM notes
			 WHERE user_id = $1
			 ORDER BY created_at ASC, id ASC`,
			userID,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	notes = make([]note.Note, 0)

	for rows.Next() {
		var n note.Note

		e := rows.Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.CreatedAt, &n.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		notes = append(notes, n)
	}

	err = rows.Err()

	return
}

func (r *NotesRepo) GetByID(ctx context.Context, id string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, content, user_id, created_at, updated_at
			 FROM notes
			 WHERE id = $1`,
			id,
		).Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.CreatedAt, &n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, err
	}

	return n, nil
}

// Update overwrites title and content only; id and owner are untouched.
func (r *NotesRepo) Update(ctx context.Context, id string, req note.UpdateNoteRequest) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE notes
				SET title = $2,
						content = $3,
						updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, title, content, user_id, created_at, updated_at`,
			id,
			req.Title,
			req.Content,
		).Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.CreatedAt, &n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("notes.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return note.ErrNotFound
	}

	return nil
}
