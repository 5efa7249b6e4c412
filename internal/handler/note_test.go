package handler

import (
	"database/sql"
	"encoding/json"
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

	"github.com/iliyamo/notes-keeper/internal/repository"
)

// stubRenderer satisfies export.Renderer without pulling in the PDF
// library's output.
type stubRenderer struct{ out []byte }

func (s *stubRenderer) Render(title, text string) ([]byte, error) { return s.out, nil }

func setupNoteHandler(t *testing.T) (*NoteHandler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewNoteHandler(repository.NewNoteRepo(db), &stubRenderer{out: []byte("%PDF-stub")})
	return h, mock, func() { db.Close() }
}

// newAuthedContext builds an echo context with the owner id the JWT
// middleware would have injected.
func newAuthedContext(method, target string, body string, ownerID uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", ownerID)
	return c, rec
}

func TestListHandler_ReportsHasMore(t *testing.T) {
	h, mock, cleanup := setupNoteHandler(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "text", "title_search", "archived", "created_at", "updated_at"})
	for i := 0; i < 10; i++ {
		rows.AddRow(uint64(50-i), uint64(1), "Note", "body", "note", false, now, now)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM notes WHERE user_id = ? AND archived = 0 AND created_at >= ?`)).
		WithArgs(uint64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id,user_id,title,text,title_search,archived,created_at,updated_at FROM notes WHERE user_id = ? AND archived = 0 AND created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)).
		WithArgs(uint64(1), sqlmock.AnyArg(), repository.PageSize, 0).
		WillReturnRows(rows)

	c, rec := newAuthedContext(http.MethodGet, "/v1/notes", "", 1)
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data    []json.RawMessage `json:"data"`
		HasMore bool              `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 10)
	assert.True(t, resp.HasMore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHandler_RequiresTitleAndText(t *testing.T) {
	h, _, cleanup := setupNoteHandler(t)
	defer cleanup()

	c, rec := newAuthedContext(http.MethodPost, "/v1/notes", `{"title":"","text":"body"}`, 1)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newAuthedContext(http.MethodPost, "/v1/notes", `{"title":"t","text":"  "}`, 1)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHandler_ForeignNoteIs404(t *testing.T) {
	h, mock, cleanup := setupNoteHandler(t)
	defer cleanup()

	// Owner 2 asks for note 7 which belongs to someone else: the owner
	// scope makes the row invisible and the response is a plain 404.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id,user_id,title,text,title_search,archived,created_at,updated_at FROM notes WHERE id=? AND user_id=? LIMIT 1`)).
		WithArgs(uint64(7), uint64(2)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newAuthedContext(http.MethodGet, "/v1/notes/7", "", 2)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteHandler_NonArchivedIsNoOpSuccess(t *testing.T) {
	h, mock, cleanup := setupNoteHandler(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE id=? AND user_id=? AND archived=1`)).
		WithArgs(uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := newAuthedContext(http.MethodDelete, "/v1/notes/7", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_SetsAttachmentHeaders(t *testing.T) {
	h, mock, cleanup := setupNoteHandler(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id,user_id,title,text,title_search,archived,created_at,updated_at FROM notes WHERE id=? AND user_id=? LIMIT 1`)).
		WithArgs(uint64(3), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "text", "title_search", "archived", "created_at", "updated_at"}).
			AddRow(uint64(3), uint64(1), "Shopping", "milk", "shopping", false, now, now))

	c, rec := newAuthedContext(http.MethodGet, "/v1/notes/3/pdf", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.ExportPDF(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="note-3.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-stub", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
