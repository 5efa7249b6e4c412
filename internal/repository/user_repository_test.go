package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/notes-keeper/internal/model"
)

func setupUserMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewUserRepo(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func userRows(u model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password", "created_at", "updated_at"}).
		AddRow(u.ID, u.Username, u.Password, u.CreatedAt, u.UpdatedAt)
}

const selectUserByUsername = `SELECT id,username,password,created_at,updated_at FROM users WHERE username=? LIMIT 1`

func TestUserCreate_Success(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password) VALUES (?,?)`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), "alice", "s3cret", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("expected id 7, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserCreate_Duplicate(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password) VALUES (?,?)`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

	_, err := repo.Create(context.Background(), "alice", "s3cret", 4)
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestResolveOrCreate_ExistingRowUntouched(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	now := time.Now().UTC()
	existing := model.User{ID: 3, Username: "bob@example.com", Password: "$2a$10$stored", CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsername)).
		WithArgs("bob@example.com").
		WillReturnRows(userRows(existing))

	u, created, err := repo.ResolveOrCreate(context.Background(), "bob@example.com", model.OAuthPlaceholder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Errorf("expected created=false for an existing row")
	}
	if u.Password != "$2a$10$stored" {
		t.Errorf("existing password must not be overwritten, got %q", u.Password)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestResolveOrCreate_FirstSightInserts(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsername)).
		WithArgs("telegram_42").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password) VALUES (?,?)`)).
		WithArgs("telegram_42", model.TelegramPlaceholder).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsername)).
		WithArgs("telegram_42").
		WillReturnRows(userRows(model.User{ID: 9, Username: "telegram_42", Password: model.TelegramPlaceholder, CreatedAt: now, UpdatedAt: now}))

	u, created, err := repo.ResolveOrCreate(context.Background(), "telegram_42", model.TelegramPlaceholder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Errorf("expected created=true on first sight")
	}
	if u.ID != 9 {
		t.Errorf("expected id 9, got %d", u.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestResolveOrCreate_LosesInsertRaceAndRereads(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsername)).
		WithArgs("carol").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password) VALUES (?,?)`)).
		WithArgs("carol", model.OAuthPlaceholder).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'carol' for key 'users.username'"))
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsername)).
		WithArgs("carol").
		WillReturnRows(userRows(model.User{ID: 5, Username: "carol", Password: model.OAuthPlaceholder, CreatedAt: now, UpdatedAt: now}))

	u, created, err := repo.ResolveOrCreate(context.Background(), "carol", model.OAuthPlaceholder)
	if err != nil {
		t.Fatalf("expected the loser of the race to re-read, got error: %v", err)
	}
	if created {
		t.Errorf("race loser must report created=false")
	}
	if u.ID != 5 {
		t.Errorf("expected the winner's row (id 5), got %d", u.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestResolveOrCreate_storeError(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsername)).
		WithArgs("dave").
		WillReturnError(errors.New("connection refused"))

	_, _, err := repo.ResolveOrCreate(context.Background(), "dave", model.OAuthPlaceholder)
	if err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
