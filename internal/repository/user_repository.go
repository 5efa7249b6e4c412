package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/notes-keeper/internal/model"
	"github.com/iliyamo/notes-keeper/internal/utils"
)

// UserRepo resolves login identities against the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// isDuplicate reports whether err is a MySQL duplicate-entry violation (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts a password-based user and returns its ID. The password
// is stored as a bcrypt hash; a username collision yields ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, username, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?,?)",
		username, hash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username match.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ResolveOrCreate maps an externally derived username (OAuth email or
// handle, telegram_<id>, ...) to a user row, inserting one on first
// sight with the given placeholder password. An existing row is
// returned unchanged, so an external login never overwrites a password.
//
// Two concurrent first logins under the same username race on the
// unique index: one insert wins, the loser sees a 1062 duplicate and
// re-reads the winner's row. Exactly one row ever exists per username.
// The created flag is true only for the call that performed the insert.
func (r *UserRepo) ResolveOrCreate(ctx context.Context, username, placeholder string) (model.User, bool, error) {
	u, err := r.GetByUsername(ctx, username)
	if err == nil {
		return u, false, nil
	}
	if err != sql.ErrNoRows {
		return model.User{}, false, err
	}

	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?,?)",
		username, placeholder)
	if err != nil && !isDuplicate(err) {
		return model.User{}, false, err
	}
	created := err == nil

	u, err = r.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, false, err
	}
	return u, created, nil
}
