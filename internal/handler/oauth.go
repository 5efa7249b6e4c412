package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-keeper/internal/auth"
	"github.com/iliyamo/notes-keeper/internal/model"
	"github.com/iliyamo/notes-keeper/internal/utils"
)

// stateCookie carries the OAuth state between the redirect and the
// callback; ten minutes is plenty for a login round trip.
const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// OAuthHandler drives the provider login flows against the registry
// built at startup. Which providers exist is purely a function of the
// configured credentials; the handler itself is provider-agnostic.
type OAuthHandler struct {
	Auth     *AuthHandler
	Registry *auth.Registry
}

func NewOAuthHandler(a *AuthHandler, r *auth.Registry) *OAuthHandler {
	return &OAuthHandler{Auth: a, Registry: r}
}

// Providers lists the login methods available on this deployment.
func (h *OAuthHandler) Providers(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"providers": h.Registry.Names()})
}

// Start handles GET /v1/auth/:provider. It mints a random state value,
// stores it in a short-lived cookie and hands the client the provider's
// authorization URL.
func (h *OAuthHandler) Start(c echo.Context) error {
	p, ok := h.Registry.Get(c.Param("provider"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}

	state, err := utils.RandomHex(16)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "state generation failed"})
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, echo.Map{"auth_url": p.AuthURL(state)})
}

// Callback handles GET /v1/auth/:provider/callback. It checks the state
// cookie, exchanges the code for a profile-derived username and resolves
// that username to a user row, creating one on first sight. An existing
// row is reused untouched, so an OAuth login never overwrites a password
// set earlier under the same username.
func (h *OAuthHandler) Callback(c echo.Context) error {
	p, ok := h.Registry.Get(c.Param("provider"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}

	state := c.QueryParam("state")
	cookie, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || cookie.Value != state {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "state mismatch"})
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	username, err := p.ResolveUsername(ctx, code)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "provider login failed"})
	}

	u, created, err := h.Auth.Users.ResolveOrCreate(ctx, username, model.OAuthPlaceholder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve user failed"})
	}

	resp, err := h.Auth.issueTokens(ctx, u.ID, u.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	h.Auth.finishLogin(ctx, u.ID, u.Username, p.Name(), created)

	return c.JSON(http.StatusOK, resp)
}
