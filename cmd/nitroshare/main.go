package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "github.com/wyatt-herkamp/nitro-share/internal/adapter/http"
	"github.com/wyatt-herkamp/nitro-share/internal/adapter/memory"
	"github.com/wyatt-herkamp/nitro-share/internal/adapter/postgres"
	"github.com/wyatt-herkamp/nitro-share/internal/app"
	"github.com/wyatt-herkamp/nitro-share/internal/auth"
	"github.com/wyatt-herkamp/nitro-share/internal/config"
	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/session"
	"github.com/wyatt-herkamp/nitro-share/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users  domain.UserRepository
		tokens domain.TokenRepository
		pastes domain.PasteRepository
		images domain.ImageRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() { _ = db.Close() }()
		users = db
		tokens = postgres.NewTokenRepo(db)
		pastes = postgres.NewPasteRepo(db)
		images = postgres.NewImageRepo(db)
	} else {
		log.Printf("DATABASE_URL not set, using in-memory storage")
		db := memory.New()
		users = db
		tokens = memory.NewTokenRepo(db)
		pastes = memory.NewPasteRepo(db)
		images = memory.NewImageRepo(db)
	}

	store, err := openSessionStore(cfg.Session)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	defer func() { _ = store.Close() }()
	go session.NewSweeper(store, cfg.Session.SweepInterval).Run(ctx)

	files, err := storage.NewLocalStore(cfg.ImageDir)
	if err != nil {
		log.Fatalf("image storage: %v", err)
	}

	var sso *adapthttp.SSO
	if cfg.OIDC.Enabled() {
		sso, err = adapthttp.NewSSO(ctx, cfg.OIDC)
		if err != nil {
			log.Fatalf("oidc provider: %v", err)
		}
	}

	resolver := auth.NewResolver(store, users, tokens, cfg.Site.Anonymous)
	authSvc := app.NewAuthService(users, tokens, store, cfg.Session.Lifetime, cfg.Site.AllowRegistration)
	pasteSvc := app.NewPasteService(pastes)
	imageSvc := app.NewImageService(images, files)

	handler := adapthttp.New(authSvc, pasteSvc, imageSvc, resolver, cfg.Session, cfg.Site, sso).Handler()
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func openSessionStore(cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Backend {
	case config.SessionBackendBolt:
		return session.OpenBoltStore(cfg.BoltPath)
	default:
		return session.NewMemoryStore(), nil
	}
}
