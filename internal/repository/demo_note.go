package repository

import (
	"context"

	"github.com/iliyamo/notes-keeper/internal/search"
)

// DemoNoteTitle is the title of the starter note seeded for new users.
const DemoNoteTitle = "Demo"

// demoNoteText is the canned markdown body of the starter note.
const demoNoteText = `# 👋 Welcome!

This is your **demo note**, written in **Markdown**. Some examples:

## 🔤 Formatting

- **Bold**
- _Italic_
- ~~Strikethrough~~
- [Link](https://example.com)

## ✅ Checkboxes

- [x] Try out Markdown
- [ ] Create your first note

## 📊 Table

| Task        | Status |
|-------------|--------|
| Sign up     | ✅     |
| Demo note   | ✅     |

Enjoy! ✨`

// EnsureDemoNote seeds the starter note for an owner who has no notes
// yet. The existence check and the insert run as a single conditional
// INSERT ... SELECT, so the common concurrent-login case inserts at
// most once; the statement is a no-op whenever the owner already owns
// any note, which also makes repeat calls idempotent.
//
// Returns true when a note was inserted. Callers are expected to log
// and swallow errors: a failed seed must never block a login.
func (r *NoteRepo) EnsureDemoNote(ctx context.Context, ownerID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notes (user_id, title, text, title_search)
		 SELECT ?, ?, ?, ? FROM DUAL
		 WHERE NOT EXISTS (SELECT 1 FROM notes WHERE user_id = ?)`,
		ownerID, DemoNoteTitle, demoNoteText, search.Normalize(DemoNoteTitle), ownerID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
