// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-keeper/internal/handler"
	"github.com/iliyamo/notes-keeper/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers every login path and the protected /v1/me
// endpoint. The unauthenticated group carries the rate limiter so that
// password guessing and widget replay are throttled per client IP;
// logout needs a JWT only when no refresh token is supplied, so it
// lives in both groups.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o *handler.OAuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/telegram", o.TelegramLogin)
	g.GET("/providers", o.Providers)
	g.GET("/:provider", o.Start)
	g.GET("/:provider/callback", o.Callback)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}

// RegisterNotes registers the note CRUD, archive lifecycle and export
// endpoints. All of them require a valid access token; the JWT
// middleware injects the owner id every repository call is scoped by.
func RegisterNotes(e *echo.Echo, n *handler.NoteHandler, jwtSecret string) {
	g := e.Group("/v1/notes")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("", n.List)
	g.POST("", n.Create)
	g.DELETE("", n.DeleteAllArchived)
	g.GET("/:id", n.Get)
	g.PUT("/:id", n.Update)
	g.POST("/:id/archive", n.Archive)
	g.POST("/:id/restore", n.Restore)
	g.DELETE("/:id", n.Delete)
	g.GET("/:id/pdf", n.ExportPDF)
}
