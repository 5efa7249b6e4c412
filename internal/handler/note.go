package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-keeper/internal/export"
	"github.com/iliyamo/notes-keeper/internal/repository"
)

// NoteHandler bundles the note repository and the export renderer.
// Every route behind it requires a JWT, so getUserID always yields the
// owner the queries are scoped by.
type NoteHandler struct {
	Notes    *repository.NoteRepo
	Renderer export.Renderer
}

func NewNoteHandler(notes *repository.NoteRepo, renderer export.Renderer) *NoteHandler {
	if notes == nil || renderer == nil {
		panic("nil dependency passed to NewNoteHandler")
	}
	return &NoteHandler{Notes: notes, Renderer: renderer}
}

type noteReq struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// List handles GET /v1/notes?filter=&search=&page= and returns one page
// of the owner's notes as {"data": [...], "hasMore": bool}.
func (h *NoteHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	page := 1
	if p := c.QueryParam("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}
	q := repository.NoteListQuery{
		Filter: c.QueryParam("filter"),
		Search: c.QueryParam("search"),
		Page:   page,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, hasMore, err := h.Notes.List(ctx, ownerID, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "hasMore": hasMore})
}

// Create handles POST /v1/notes. Title and text are both required.
func (h *NoteHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and text are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	note, err := h.Notes.Create(ctx, ownerID, req.Title, req.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create note failed"})
	}
	return c.JSON(http.StatusCreated, note)
}

// Get handles GET /v1/notes/:id. A note of another owner produces the
// same 404 as a note that does not exist.
func (h *NoteHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	note, err := h.Notes.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if err == repository.ErrNoteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, note)
}

// Update handles PUT /v1/notes/:id. The search key is recomputed from
// the new title inside the repository, atomically with the update.
func (h *NoteHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and text are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	note, err := h.Notes.Update(ctx, ownerID, id, req.Title, req.Text)
	if err != nil {
		if err == repository.ErrNoteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, note)
}
