package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/notes-api/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

// NoteRepo is the note store. Every read and write is scoped to an owner.
type NoteRepo struct {
	DB *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{DB: db}
}

const noteColumns = `id, owner_id, title, content, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// ========================
// LIST NOTES BY OWNER
// ========================

// ListByOwner returns the owner's notes, most recently updated first. A non-empty
// query keeps only notes whose title, content or tags contain it (case-insensitive).
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID int, query string) ([]models.Note, error) {
	q := `SELECT ` + noteColumns + ` FROM notes WHERE owner_id = $1`
	args := []any{ownerID}

	if query = strings.TrimSpace(query); query != "" {
		q += ` AND (LOWER(title) LIKE $2 ESCAPE '\' OR LOWER(content) LIKE $2 ESCAPE '\' OR LOWER(tags) LIKE $2 ESCAPE '\')`
		args = append(args, likePattern(query))
	}
	q += ` ORDER BY updated_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// ========================
// GET OWNED NOTE
// ========================

// GetOwned returns ErrNotFound both for a missing note and for one owned by someone else.
func (r *NoteRepo) GetOwned(ctx context.Context, id, ownerID int) (*models.Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &n, nil
}

// ========================
// CREATE NOTE
// ========================

func (r *NoteRepo) Create(ctx context.Context, ownerID int, title, content, tags string) (*models.Note, error) {
	ts := now()
	note := &models.Note{
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO notes (owner_id, title, content, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		ownerID, title, content, tags, ts, ts,
	).Scan(&note.ID)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	return note, nil
}

// ========================
// UPDATE NOTE
// ========================

// Update overwrites title, content and tags of an owned note and moves updated_at
// forward. created_at is left alone. Returns ErrNotFound when the note is not owned.
func (r *NoteRepo) Update(ctx context.Context, id, ownerID int, title, content, tags string) (*models.Note, error) {
	note, err := r.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	ts := now()
	if !ts.After(note.UpdatedAt) {
		ts = note.UpdatedAt.Add(time.Microsecond)
	}

	result, err := r.DB.ExecContext(ctx,
		`UPDATE notes
		 SET title = $1, content = $2, tags = $3, updated_at = $4
		 WHERE id = $5 AND owner_id = $6`,
		title, content, tags, ts, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Deleted between the lookup and the update.
		return nil, ErrNotFound
	}

	note.Title = title
	note.Content = content
	note.Tags = tags
	note.UpdatedAt = ts
	return note, nil
}

// ========================
// DELETE NOTE
// ========================

// Delete reports whether a note matching both id and owner was removed.
func (r *NoteRepo) Delete(ctx context.Context, id, ownerID int) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
