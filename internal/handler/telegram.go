package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-keeper/internal/auth"
	"github.com/iliyamo/notes-keeper/internal/model"
)

// TelegramLogin handles POST /v1/auth/telegram with a login-widget
// payload. The signature is verified before any identity resolution —
// the payload is only trusted because the bot token signed it.
func (h *OAuthHandler) TelegramLogin(c echo.Context) error {
	if h.Auth.Cfg.TelegramBotToken == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "telegram login disabled"})
	}

	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	data := payloadStrings(raw)

	if !auth.VerifyTelegram(data, h.Auth.Cfg.TelegramBotToken) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "bad signature"})
	}

	username := auth.TelegramUsername(data)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, created, err := h.Auth.Users.ResolveOrCreate(ctx, username, model.TelegramPlaceholder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve user failed"})
	}

	resp, err := h.Auth.issueTokens(ctx, u.ID, u.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	h.Auth.finishLogin(ctx, u.ID, u.Username, "telegram", created)

	return c.JSON(http.StatusOK, resp)
}

// payloadStrings flattens a decoded JSON object into the string map the
// signature check operates on. Numbers are rendered without a decimal
// point (the widget signs them as integers) and non-scalar values are
// skipped.
func payloadStrings(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		}
	}
	return out
}
