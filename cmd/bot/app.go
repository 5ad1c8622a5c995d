package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/Proton-105/citrine-bot/internal/bot"
	"github.com/Proton-105/citrine-bot/internal/bot/commands"
	"github.com/Proton-105/citrine-bot/internal/bot/modules"
	"github.com/Proton-105/citrine-bot/internal/database"
	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/errors"
	"github.com/Proton-105/citrine-bot/internal/health"
	"github.com/Proton-105/citrine-bot/internal/i18n"
	"github.com/Proton-105/citrine-bot/internal/lifecycle"
	"github.com/Proton-105/citrine-bot/internal/permission"
	"github.com/Proton-105/citrine-bot/internal/ratelimit"
	"github.com/Proton-105/citrine-bot/internal/state"
	"github.com/Proton-105/citrine-bot/internal/user"
	"github.com/Proton-105/citrine-bot/pkg/config"
	"github.com/Proton-105/citrine-bot/pkg/logger"
	appredis "github.com/Proton-105/citrine-bot/pkg/redis"
)

// app holds everything shared by the serve and console commands.
type app struct {
	cfg      *config.Config
	v        *viper.Viper
	log      *slog.Logger
	shutdown *lifecycle.Shutdown
	checker  *health.Checker

	rdb *goredis.Client
	db  *sql.DB

	users      *user.Service
	limiter    ratelimit.Limiter
	tr         i18n.Translator
	errHandler *errors.Handler
}

func loadConfig(path string) (*config.Config, *viper.Viper, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, v, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(*cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	flush, err := logger.InitSentry(cfg.Sentry, version)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		v:          v,
		log:        log,
		shutdown:   lifecycle.NewShutdown(log),
		checker:    health.NewChecker(log, 0),
		errHandler: errors.NewHandler(log, cfg.Sentry.Enabled),
	}
	a.shutdown.Register(lifecycle.StageTelemetry, "sentry", func(context.Context) error {
		flush()
		return nil
	})

	catalog, err := i18n.Load(cfg.Language)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.tr = catalog.Translator(cfg.Language)

	store, limiter, err := a.openStorage(ctx)
	if err != nil {
		return nil, a.fail(ctx, err)
	}

	a.limiter = limiter
	a.users = user.NewService(store, log,
		user.WithLikeLimit(limiter, cfg.Affinity.LikeLimit, cfg.Affinity.LikeWindow),
		user.WithNicknameFormat(cfg.NicknameFormat),
	)

	return a, nil
}

// openStorage connects the configured backend. Redis, when enabled, also
// backs the per-user lock and the like limiter.
func (a *app) openStorage(ctx context.Context) (*state.Store, ratelimit.Limiter, error) {
	var (
		storage state.Storage
		locker  state.Locker      = state.NewLocalLocker()
		limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	)

	if a.cfg.Redis.Enabled || a.cfg.Storage.Driver == "redis" {
		rdb, err := appredis.New(ctx, a.cfg.Redis, a.log)
		if err != nil {
			return nil, nil, err
		}
		a.rdb = rdb
		a.checker.AddCheck("redis", health.NewRedisChecker(rdb))
		a.shutdown.Register(lifecycle.StageResources, "redis", func(context.Context) error {
			return rdb.Close()
		})

		locker = state.NewRedisLocker(rdb, a.log)
		limiter = ratelimit.NewRedisLimiter(rdb, a.log)
	}

	switch a.cfg.Storage.Driver {
	case "redis":
		storage = state.NewRedisStorage(a.rdb, a.log)
	case "postgres":
		db, err := database.Open(ctx, a.cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		a.db = db
		a.checker.AddCheck("postgres", health.NewDBChecker(db))
		a.shutdown.Register(lifecycle.StageResources, "postgres", func(context.Context) error {
			return db.Close()
		})

		if err := database.NewMigrator(db, a.log).Migrate(ctx, a.cfg.Database.MigrationsDir); err != nil {
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		storage = state.NewPostgresStorage(db, a.log)
	default:
		a.log.Warn("using in-memory storage, user state is lost on restart")
		storage = state.NewMemoryStorage()
	}

	a.log.Info("storage ready",
		slog.String("driver", a.cfg.Storage.Driver),
		slog.Bool("redis", a.rdb != nil),
	)

	return state.NewStore(storage, locker, a.log), limiter, nil
}

func (a *app) identity() *permission.Identity {
	id := permission.NewIdentity(a.cfg.Admin, a.cfg.Moderators)
	logIdentity(a.log, id)
	return id
}

func logIdentity(log *slog.Logger, id *permission.Identity) {
	log.Info("identity loaded",
		slog.String("admin", id.Admin()),
		slog.Any("moderators", id.Moderators()),
	)
}

// reloadIdentity swaps the engine identity when the config file changes.
// The engine logs the new identity itself.
func reloadIdentity(engine *bot.Engine) func(*config.Config) {
	return func(cfg *config.Config) {
		engine.SetIdentity(permission.NewIdentity(cfg.Admin, cfg.Moderators))
	}
}

// newEngine builds the engine with the built-in modules and commands.
func (a *app) newEngine(shell domain.Shell) *bot.Engine {
	d := a.cfg.Dispatch

	engine := bot.NewEngine(shell, a.users, a.identity(), a.log,
		bot.WithDelays(bot.Delays{
			Mention:       d.MentionDelay,
			Timeline:      d.TimelineDelay,
			DirectMessage: d.DirectMessageDelay,
			Follow:        d.FollowDelay,
		}),
		bot.WithContinuationTTL(d.ContinuationTTL),
		bot.WithTranslator(a.tr),
		bot.WithErrorHandler(a.errHandler),
	)

	engine.AddModule(modules.NewCommand(a.log))
	engine.AddModule(modules.NewCallMe())

	for _, cmd := range commands.All() {
		engine.AddCommand(cmd)
	}

	a.log.Info("engine ready",
		slog.Any("modules", engine.ModuleNames()),
		slog.Int("commands", engine.Commands().Len()),
	)

	return engine
}

// close runs the shutdown hooks on a context that survives the cancelled parent.
func (a *app) close(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	return a.shutdown.Execute(shutdownCtx)
}

func (a *app) fail(ctx context.Context, err error) error {
	if closeErr := a.close(ctx); closeErr != nil {
		a.log.Error("cleanup after startup failure", slog.Any("error", closeErr))
	}
	return err
}
