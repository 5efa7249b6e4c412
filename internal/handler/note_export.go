package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-keeper/internal/repository"
)

// ExportPDF handles GET /v1/notes/:id/pdf and streams the rendered note
// as an attachment. Ownership scoping is identical to Get: a foreign
// note exports exactly like a missing one.
func (h *NoteHandler) ExportPDF(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	note, err := h.Notes.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if err == repository.ErrNoteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	doc, err := h.Renderer.Render(note.Title, note.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pdf rendering failed"})
	}

	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="note-%d.pdf"`, note.ID))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
