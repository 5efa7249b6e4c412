package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-keeper/internal/auth"
	"github.com/iliyamo/notes-keeper/internal/bot"
	"github.com/iliyamo/notes-keeper/internal/config"
	"github.com/iliyamo/notes-keeper/internal/database"
	"github.com/iliyamo/notes-keeper/internal/export"
	"github.com/iliyamo/notes-keeper/internal/handler"
	"github.com/iliyamo/notes-keeper/internal/middleware"
	"github.com/iliyamo/notes-keeper/internal/queue"
	"github.com/iliyamo/notes-keeper/internal/repository"
	"github.com/iliyamo/notes-keeper/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.InitSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema init failed: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	notes := repository.NewNoteRepo(db)

	// The provider registry is built once here and handed to the HTTP
	// layer; providers without credentials simply do not register.
	rc := resty.New().SetTimeout(10 * time.Second)
	registry := auth.NewRegistry(
		auth.NewGoogle(cfg.Google, rc),
		auth.NewGitHub(cfg.GitHub, rc),
		auth.NewFacebook(cfg.Facebook, rc),
	)
	log.Printf("oauth providers enabled: %v", registry.Names())

	authHandler := handler.NewAuthHandler(cfg, users, tokens, notes)
	oauthHandler := handler.NewOAuthHandler(authHandler, registry)
	noteHandler := handler.NewNoteHandler(notes, export.NewPDF())

	// Redis backs only the auth rate limiter; a missing Redis disables
	// throttling but never the service.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)

	// Signup events land in logs/signups.log via the broker.
	go func() {
		if err := queue.StartSignupConsumer(); err != nil {
			log.Printf("signup consumer stopped: %v", err)
		}
	}()

	// Expired session rows are purged hourly.
	go func() {
		for {
			time.Sleep(time.Hour)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := tokens.PurgeExpired(ctx, time.Now().UTC().Add(-24*time.Hour)); err != nil {
				log.Printf("token purge failed: %v", err)
			} else if n > 0 {
				log.Printf("purged %d dead refresh tokens", n)
			}
			cancel()
		}
	}()

	if cfg.TelegramBotToken != "" {
		go bot.Run(context.Background(), cfg.TelegramBotToken)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, oauthHandler, cfg.JWTSecret, limiter)
	router.RegisterNotes(e, noteHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
