package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/cyberdas/backend/modules/auth"
	"github.com/cyberdas/backend/modules/feedback"
	"github.com/cyberdas/backend/modules/maintenance"
	"github.com/cyberdas/backend/pkg/config"
	"github.com/cyberdas/backend/pkg/httpserver"
	"github.com/cyberdas/backend/pkg/logger"
	"github.com/cyberdas/backend/pkg/mail"
	"github.com/cyberdas/backend/pkg/ott"
	"github.com/cyberdas/backend/pkg/pg"
	"github.com/cyberdas/backend/pkg/quickauth"
	"github.com/cyberdas/backend/pkg/requestid"
	"github.com/cyberdas/backend/pkg/session"
	"github.com/cyberdas/backend/pkg/token"
)

type appConfig struct {
	Logger  logger.Config
	PG      pg.Config
	HTTP    httpserver.Config
	Session session.Config
	OTT     ott.Config
	Mail    mail.Config
	Auth    auth.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger,
		logger.WithAttr(logger.Component("server")),
		logger.WithContextExtractor(requestid.LogAttr),
	)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	sender, err := newSender(cfg.Mail, log)
	if err != nil {
		return err
	}

	shorts := session.NewPGShortStore(cfg.Session.SessionTTL)
	longs := session.NewPGLongStore(cfg.Session.RememberTTL)
	sessions := session.NewManager(shorts, longs, cfg.Session, session.WithLogger(log))

	users := auth.NewPGUserStorage()
	verify := mail.NewTransaction[auth.VerifyClaims](sender, token.New(cfg.Auth.SignupSecret, "signup"), mail.TransactionConfig{
		Subject:     "Confirm your email",
		Intro:       "Follow the link below to confirm your email address.",
		FrontendURL: cfg.Mail.FrontendURL,
		BackendPath: "auth/verify",
		MaxAge:      cfg.Auth.MailTokenTTL,
	})
	tokens := ott.New(cfg.OTT, log)
	quick := quickauth.New(users, log)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/health", httpserver.HealthHandler(log, pg.Healthcheck(pool)))

	r.Group(func(r chi.Router) {
		r.Use(pg.TransactionMiddleware(pool, log))
		r.Mount("/auth", auth.NewService(users, sessions, verify, tokens, quick, log).Router())
		r.Mount("/feedback", feedback.NewService(feedback.NewPGStorage(), log).Router())
		r.Mount("/maintenance", maintenance.NewService(maintenance.NewPGStorage(), sessions, tokens, log).Router())
	})

	return httpserver.New(cfg.HTTP, log).Run(ctx, r)
}

// newSender picks Postmark when its credentials are configured and falls back
// to writing emails to disk otherwise, so local setups need no mail account.
func newSender(cfg mail.Config, log *slog.Logger) (mail.EmailSender, error) {
	if cfg.PostmarkServerToken != "" && cfg.PostmarkAccountToken != "" {
		return mail.NewPostmarkSender(cfg)
	}

	if err := os.MkdirAll(cfg.DevDir, 0o755); err != nil {
		return nil, err
	}
	log.Info("transactional mail writes to disk", slog.String("dir", cfg.DevDir))
	return mail.NewDevSender(cfg.DevDir), nil
}
