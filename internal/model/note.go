package model

import "time"

// Note mirrors a row of the `notes` table.  A note belongs to exactly
// one user and is never visible to anyone else; every repository
// operation filters by user_id in addition to its own predicate.
//
// TitleSearch holds the lowercased, diacritic-folded form of Title and
// is regenerated whenever the title changes.  Archived partitions the
// owner's notes into two disjoint views: the age-based filters only
// ever return active notes, the archive filter only archived ones.
//
// Fields:
//  ID          – primary key identifier of the note.
//  UserID      – owner of the note, immutable after creation.
//  Title       – note title as entered by the user.
//  Text        – markdown body.
//  TitleSearch – normalized title used for substring matching.
//  Archived    – whether the note lives in the archive view.
//  CreatedAt   – timestamp of creation; list ordering key.
//  UpdatedAt   – timestamp of last update.
type Note struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	TitleSearch string    `json:"-"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"updated"`
}
