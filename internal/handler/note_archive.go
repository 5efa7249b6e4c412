package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-keeper/internal/repository"
)

// setArchived is the shared body of Archive and Restore. Re-applying
// the current state is a success: both operations are retry-safe.
func (h *NoteHandler) setArchived(c echo.Context, archived bool) error {
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

	if err := h.Notes.SetArchived(ctx, ownerID, id, archived); err != nil {
		if err == repository.ErrNoteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Archive handles POST /v1/notes/:id/archive.
func (h *NoteHandler) Archive(c echo.Context) error {
	return h.setArchived(c, true)
}

// Restore handles POST /v1/notes/:id/restore.
func (h *NoteHandler) Restore(c echo.Context) error {
	return h.setArchived(c, false)
}

// Delete handles DELETE /v1/notes/:id. Only archived notes are ever
// removed; an active, missing or foreign id deletes nothing and still
// reports success, so client retries stay safe and nothing leaks about
// which ids exist.
func (h *NoteHandler) Delete(c echo.Context) error {
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

	if err := h.Notes.DeleteArchived(ctx, ownerID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteAllArchived handles DELETE /v1/notes and purges the owner's
// whole archive in one statement.
func (h *NoteHandler) DeleteAllArchived(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Notes.DeleteAllArchived(ctx, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "deleted": deleted})
}
