package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/notes-keeper/internal/config"
	"github.com/iliyamo/notes-keeper/internal/repository"
	"github.com/iliyamo/notes-keeper/internal/utils"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // minimum cost keeps the tests fast
	}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), repository.NewNoteRepo(db))
	return h, mock, func() { db.Close() }
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegister_MissingFields(t *testing.T) {
	h, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/register", `{"username":"","password":"x"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h, mock, cleanup := setupAuthHandler(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password) VALUES (?,?)`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(sqlErr1062())

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/register", `{"username":"alice","password":"pw"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLogin_UnknownUserAndWrongPasswordIndistinguishable pins the
// enumeration-safety property: the response for a username that does
// not exist is byte-identical to the response for a wrong password.
func TestLogin_UnknownUserAndWrongPasswordIndistinguishable(t *testing.T) {
	h, mock, cleanup := setupAuthHandler(t)
	defer cleanup()

	selectUser := regexp.QuoteMeta(`SELECT id,username,password,created_at,updated_at FROM users WHERE username=? LIMIT 1`)

	mock.ExpectQuery(selectUser).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	c, recUnknown := newJSONContext(http.MethodPost, "/v1/auth/login", `{"username":"ghost","password":"pw"}`)
	require.NoError(t, h.Login(c))

	hash, err := utils.HashPassword("right-password", 4)
	require.NoError(t, err)
	now := time.Now().UTC()
	mock.ExpectQuery(selectUser).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at", "updated_at"}).
			AddRow(uint64(1), "alice", hash, now, now))
	c, recWrong := newJSONContext(http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"wrong"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrong.Code)
	assert.Equal(t, recUnknown.Body.String(), recWrong.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLogin_PlaceholderPasswordNeverVerifies pins the rule that an
// account created by an OAuth or Telegram login stays closed to
// password login: the stored sentinel is not a bcrypt hash.
func TestLogin_PlaceholderPasswordNeverVerifies(t *testing.T) {
	h, mock, cleanup := setupAuthHandler(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id,username,password,created_at,updated_at FROM users WHERE username=? LIMIT 1`)).
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at", "updated_at"}).
			AddRow(uint64(2), "bob@example.com", "oauth_placeholder", now, now))

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", `{"username":"bob@example.com","password":"oauth_placeholder"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_InvalidToken(t *testing.T) {
	h, mock, cleanup := setupAuthHandler(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"bogus"}`)
	require.NoError(t, h.Refresh(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLogout_PublicRouteNeedsRefreshToken covers the unauthenticated
// logout route: no JWT middleware runs there, so a request without a
// refresh token has no credential the handler could act on and the
// error names the only one that works.
func TestLogout_PublicRouteNeedsRefreshToken(t *testing.T) {
	h, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/logout", `{}`)
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token required")
}

func sqlErr1062() error {
	return &mysqlDupErr{}
}

// mysqlDupErr mimics the driver's duplicate-entry error text without
// importing driver internals into the test.
type mysqlDupErr struct{}

func (e *mysqlDupErr) Error() string {
	return "Error 1062 (23000): Duplicate entry 'alice' for key 'users.uq_users_username'"
}
