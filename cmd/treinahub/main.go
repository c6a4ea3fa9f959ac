package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/treinahub/treinahub/core/config"
	"github.com/treinahub/treinahub/core/cookie"
	"github.com/treinahub/treinahub/core/email"
	"github.com/treinahub/treinahub/core/server"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/core/sessiontransport"
	"github.com/treinahub/treinahub/integration/database/pg"
	redisconn "github.com/treinahub/treinahub/integration/database/redis"
	"github.com/treinahub/treinahub/integration/drive"
	"github.com/treinahub/treinahub/integration/email/postmark"
	"github.com/treinahub/treinahub/integration/whatsapp"
	"github.com/treinahub/treinahub/pkg/ratelimiter"
	"github.com/treinahub/treinahub/storage"
	"github.com/treinahub/treinahub/view"
	"github.com/treinahub/treinahub/web"
)

const sessionCleanupInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg)

	log := newLogger(cfg.App.Debug)

	db, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		fatal(log, "failed to connect to database", err)
	}
	defer db.Close()

	if err := pg.Migrate(ctx, cfg.DB, storage.Migrations, storage.MigrationsDir, log.With("component", "migration")); err != nil {
		fatal(log, "failed to migrate database", err)
	}

	// `treinahub migrate` applies migrations and exits, for deploy hooks.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		log.Info("migrations applied")
		return
	}

	cookieMgr, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		fatal(log, "failed to create cookie manager", err)
	}

	renderer, err := view.New()
	if err != nil {
		fatal(log, "failed to parse templates", err)
	}

	eg, ctx := errgroup.WithContext(ctx)

	redisClient, err := connectRedis(ctx, cfg, log)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var sessionStore session.Store[web.SessionData]
	if cfg.Session.Store == "redis" {
		sessionStore = session.NewRedisStore[web.SessionData](redisClient)
	} else {
		sessionStore = session.NewMemoryStore[web.SessionData]()
	}

	sesMgr := session.NewFromConfig(cfg.Session, sessionStore)
	eg.Go(sessionCleanup(ctx, sesMgr, log.With("component", "session.cleanup")))

	sessions := sessiontransport.NewCookie(sesMgr, cookieMgr, cfg.Cookie.Name)

	limiter, err := newLimiter(ctx, eg, cfg.Limiter, redisClient)
	if err != nil {
		fatal(log, "failed to create rate limiter", err)
	}

	deps := web.Deps{
		Config:   cfg.App,
		Logger:   log,
		Renderer: renderer,
		Sessions: sessions,

		LoginLimiter:   limiter,
		ForgotLimiter:  limiter,
		ContactLimiter: limiter,

		Users:          storage.NewUserRepository(db),
		Students:       storage.NewStudentRepository(db),
		Teachers:       storage.NewTeacherRepository(db),
		Courses:        storage.NewCourseRepository(db),
		CourseHours:    storage.NewCourseHoursRepository(db),
		Certificates:   storage.NewCertificateRepository(db),
		PasswordResets: storage.NewPasswordResetRepository(db),

		Email:    newEmailSender(log),
		WhatsApp: newWhatsApp(log),
		Drive:    newDrive(log),
	}

	s, err := server.NewFromConfig(cfg.Server)
	if err != nil {
		fatal(log, "failed to create server", err)
	}
	eg.Go(s.Run(ctx, web.New(deps)))

	log.Info("listening", "addr", cfg.Server.Addr, "env", cfg.App.Env)

	if err := eg.Wait(); err != nil {
		fatal(log, "server terminated", err)
	}

	log.Info("application stopped")
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

// connectRedis dials Redis only when the session store or the rate limiter
// is configured to use it.
func connectRedis(ctx context.Context, cfg Config, log *slog.Logger) (*redis.Client, error) {
	if cfg.Session.Store != "redis" && !(cfg.Limiter.Enabled && cfg.Limiter.UseRedis) {
		return nil, nil
	}

	var redisCfg redisconn.Config
	if err := config.Load(&redisCfg); err != nil {
		return nil, err
	}

	client, err := redisconn.Connect(ctx, redisCfg)
	if err != nil {
		return nil, err
	}

	log.Info("redis connected")
	return client, nil
}

// newLimiter builds the shared login/forgot/contact limiter, or nil when
// rate limiting is disabled. The in-memory store's sweeper runs on the
// errgroup so it stops with the rest of the service.
func newLimiter(ctx context.Context, eg *errgroup.Group, cfg ratelimiter.Config, redisClient *redis.Client) (*ratelimiter.Limiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var store ratelimiter.Store
	if cfg.UseRedis {
		store = ratelimiter.NewRedisStore(redisClient)
	} else {
		mem := ratelimiter.NewMemoryStore()
		eg.Go(func() error { return mem.Start(ctx) })
		store = mem
	}

	return ratelimiter.New(store, cfg)
}

// sessionCleanup periodically purges expired sessions from the store.
func sessionCleanup(ctx context.Context, mgr *session.Manager[web.SessionData], log *slog.Logger) func() error {
	return func() error {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				n, err := mgr.CleanupExpired(ctx)
				if err != nil {
					log.ErrorContext(ctx, "session cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					log.InfoContext(ctx, "expired sessions removed", "count", n)
				}
			}
		}
	}
}

func newEmailSender(log *slog.Logger) email.EmailSender {
	var cfg postmark.Config
	if err := config.Load(&cfg); err != nil {
		log.Info("email sending disabled", "reason", err)
		return nil
	}

	sender, err := postmark.New(cfg)
	if err != nil {
		log.Info("email sending disabled", "reason", err)
		return nil
	}
	return sender
}

func newWhatsApp(log *slog.Logger) *whatsapp.Client {
	var cfg whatsapp.Config
	if err := config.Load(&cfg); err != nil {
		log.Info("whatsapp disabled", "reason", err)
		return nil
	}

	client, err := whatsapp.New(cfg)
	if err != nil {
		log.Info("whatsapp disabled", "reason", err)
		return nil
	}
	return client
}

func newDrive(log *slog.Logger) *drive.Client {
	var cfg drive.Config
	if err := config.Load(&cfg); err != nil {
		log.Info("drive uploads disabled", "reason", err)
		return nil
	}

	client, err := drive.New(cfg)
	if err != nil {
		log.Info("drive uploads disabled", "reason", err)
		return nil
	}
	return client
}
