package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/notes-keeper/internal/model"
	"github.com/iliyamo/notes-keeper/internal/search"
)

// PageSize is the fixed number of notes per list page.
const PageSize = 10

// Filter names accepted by List. Age filters select active notes created
// inside a trailing window; the archive filter selects archived notes
// regardless of age. The two axes never overlap: an archived note is
// excluded from the age filters even when its age alone would match.
const (
	FilterOneMonth    = "1month"
	FilterThreeMonths = "3months"
	FilterArchive     = "archive"
)

// NoteListQuery carries filter, search and pagination parameters for List.
type NoteListQuery struct {
	Filter string // one of the Filter* constants; empty means 1month
	Search string // raw search term; normalized before matching
	Page   int    // 1-based page index; values < 1 are treated as 1
}

// NoteRow is a listed note plus search-match metadata. Matches echoes
// the normalized search term back when the title matched, so a client
// can highlight occurrences without re-implementing the folding rules.
type NoteRow struct {
	model.Note
	Matches []string `json:"matches,omitempty"`
}

// NoteRepo owns CRUD and the list query contract for the 'notes' table.
// Every operation is scoped by owner id; a foreign note id behaves
// exactly like a missing one.
type NoteRepo struct{ DB *sql.DB }

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{DB: db} }

const noteColumns = "id,user_id,title,text,title_search,archived,created_at,updated_at"

func scanNote(row *sql.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Text, &n.TitleSearch,
		&n.Archived, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// Create inserts a note for the owner. The normalized search key is
// derived from the title in the same statement's parameter set, so the
// two can never diverge.
func (r *NoteRepo) Create(ctx context.Context, ownerID uint64, title, text string) (model.Note, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notes (user_id, title, text, title_search) VALUES (?,?,?,?)",
		ownerID, title, text, search.Normalize(title))
	if err != nil {
		return model.Note{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Note{}, err
	}
	return r.GetByIDAndOwner(ctx, uint64(id), ownerID)
}

// GetByIDAndOwner fetches one note scoped by owner. Missing and
// foreign-owned ids collapse to the same ErrNoteNotFound.
func (r *NoteRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id=? AND user_id=? LIMIT 1",
		id, ownerID))
	if err == sql.ErrNoRows {
		return model.Note{}, ErrNoteNotFound
	}
	return n, err
}

// Update replaces title and text and recomputes the search key, all in
// one UPDATE. MySQL counts changed rows, not matched rows, so
// re-submitting identical content within the NOW() second affects zero
// rows even though the note exists; 0 affected therefore triggers the
// same existence re-check as SetArchived before reporting not found.
func (r *NoteRepo) Update(ctx context.Context, ownerID, id uint64, title, text string) (model.Note, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notes SET title=?, text=?, title_search=?, updated_at=NOW() WHERE id=? AND user_id=?",
		title, text, search.Normalize(title), id, ownerID)
	if err != nil {
		return model.Note{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Note{}, err
	}
	if affected == 0 {
		var exists bool
		err = r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM notes WHERE id=? AND user_id=?)",
			id, ownerID).Scan(&exists)
		if err != nil {
			return model.Note{}, err
		}
		if !exists {
			return model.Note{}, ErrNoteNotFound
		}
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// SetArchived moves a note into or out of the archive view. Applying
// the current state again is a no-op success, so the operation is safe
// to retry; an unknown or foreign id is ErrNoteNotFound.
func (r *NoteRepo) SetArchived(ctx context.Context, ownerID, id uint64, archived bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notes SET archived=? WHERE id=? AND user_id=?",
		archived, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// MySQL reports 0 affected rows both when no row matched and
		// when the row already holds the target value. Re-check so an
		// idempotent re-archive is not mistaken for a missing note.
		var exists bool
		err = r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM notes WHERE id=? AND user_id=?)",
			id, ownerID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNoteNotFound
		}
	}
	return nil
}

// DeleteArchived removes a single note, but only while it sits in the
// archive. Active, missing and foreign notes all delete zero rows and
// that is still success: repeated client retries stay safe and nothing
// leaks about whether the id exists.
func (r *NoteRepo) DeleteArchived(ctx context.Context, ownerID, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM notes WHERE id=? AND user_id=? AND archived=1",
		id, ownerID)
	return err
}

// DeleteAllArchived purges the owner's archive in one statement and
// returns the number of notes removed.
func (r *NoteRepo) DeleteAllArchived(ctx context.Context, ownerID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM notes WHERE user_id=? AND archived=1",
		ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns one page of the owner's notes plus a hasMore flag.
//
// Ordering is by creation time descending with id as tiebreak, which
// keeps page N and page N+1 disjoint and contiguous absent concurrent
// writes. hasMore comes from a true COUNT over the same predicates, so
// a result set that is an exact multiple of the page size still reports
// hasMore=false on its last page.
func (r *NoteRepo) List(ctx context.Context, ownerID uint64, q NoteListQuery) ([]NoteRow, bool, error) {
	where := []string{"user_id = ?"}
	args := []any{ownerID}

	switch q.Filter {
	case FilterArchive:
		where = append(where, "archived = 1")
	case FilterThreeMonths:
		where = append(where, "archived = 0", "created_at >= ?")
		args = append(args, time.Now().UTC().Add(-90*24*time.Hour))
	default: // 1month
		where = append(where, "archived = 0", "created_at >= ?")
		args = append(args, time.Now().UTC().Add(-30*24*time.Hour))
	}

	term := search.Normalize(strings.TrimSpace(q.Search))
	if term != "" {
		where = append(where, "title_search LIKE ?")
		args = append(args, "%"+term+"%")
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, false, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := PageSize
	offset := (page - 1) * limit

	dataSQL := "SELECT " + noteColumns + " FROM notes WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out := make([]NoteRow, 0, limit)
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Text, &n.TitleSearch,
			&n.Archived, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, false, err
		}
		row := NoteRow{Note: n}
		if term != "" && strings.Contains(n.TitleSearch, term) {
			row.Matches = []string{term}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(offset+limit) < total
	return out, hasMore, nil
}
