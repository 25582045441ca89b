package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"

	"github.com/zarenu/zare-api/internal/config"
	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/handlers"
	"github.com/zarenu/zare-api/internal/logger"
	authmw "github.com/zarenu/zare-api/internal/middleware"
	"github.com/zarenu/zare-api/internal/services"
	"github.com/zarenu/zare-api/internal/social"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(os.Getenv("ENV"))
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if cfg.Social.TrustedClaims {
		log.Warn().Msg("SOCIAL_TRUSTED_CLAIMS is enabled; provider tokens are not verified")
	}

	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	identityService := services.NewIdentityService(db)
	profileService := services.NewProfileService(db)
	pictureService := services.NewPictureService(cfg.MediaRoot, cfg.Social.PictureTimeout, cfg.Social.PictureMaxBytes, log)
	opportunityService := services.NewOpportunityService(db)
	contactService := services.NewContactService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	registry := social.NewDefaultRegistry(social.Options{
		TrustedClaims: cfg.Social.TrustedClaims,
		Timeout:       cfg.Social.VerifyTimeout,
	})
	reconciler := social.NewReconciler(registry, identityService, tokenService, profileService, pictureService, log)

	socialHandler := handlers.NewSocialHandler(reconciler, tokenService, identityService, profileService, cfg.MediaURL, log)
	profileHandler := handlers.NewProfileHandler(userService, profileService, cfg.MediaURL, log)
	opportunityHandler := handlers.NewOpportunityHandler(opportunityService, log)
	contactHandler := handlers.NewContactHandler(contactService, emailService, cfg.ContactNotifyTo, log)
	healthHandler := handlers.NewHealthHandler(db, log)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Post("/auth/social/login", socialHandler.Login)
	api.Get("/opportunities", opportunityHandler.List)
	api.Post("/contact", contactHandler.Submit)
	api.Get("/health", healthHandler.Check)

	protected := api.Group("")
	protected.Use(authmw.Auth(tokenService))

	protected.Post("/auth/social/logout", socialHandler.Logout)
	protected.Get("/auth/profile", socialHandler.Profile)
	protected.Post("/auth/social/link", socialHandler.Link)
	protected.Post("/auth/social/unlink", socialHandler.Unlink)

	protected.Get("/profiles/me", profileHandler.GetMe)
	protected.Patch("/profiles/me", profileHandler.UpdateMe)

	protected.Post("/opportunities", opportunityHandler.Create)
	protected.Post("/opportunities/:id/apply", opportunityHandler.Apply)
	protected.Get("/history", opportunityHandler.History)

	staff := protected.Group("")
	staff.Use(authmw.RequireStaff())
	staff.Get("/users", profileHandler.ListUsers)

	mux := http.NewServeMux()
	if prefix := mediaPrefix(cfg.MediaURL); prefix != "" {
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.MediaRoot))))
	}
	mux.Handle("/", app)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// mediaPrefix returns the local path media is served under, or "" when
// MEDIA_URL points at another host.
func mediaPrefix(mediaURL string) string {
	if !strings.HasPrefix(mediaURL, "/") {
		return ""
	}
	return strings.TrimRight(mediaURL, "/") + "/"
}
