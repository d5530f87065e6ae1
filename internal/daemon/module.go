package daemon

import (
	"context"

	"github.com/matheus3301/nikki/internal/api"
	"github.com/matheus3301/nikki/internal/bus"
	"github.com/matheus3301/nikki/internal/config"
	"github.com/matheus3301/nikki/internal/engine"
	"github.com/matheus3301/nikki/internal/history"
	"github.com/matheus3301/nikki/internal/lock"
	"github.com/matheus3301/nikki/internal/logging"
	"github.com/matheus3301/nikki/internal/metrics"
	"github.com/matheus3301/nikki/internal/monitor"
	"github.com/matheus3301/nikki/internal/profile"
	"github.com/matheus3301/nikki/internal/queue"
	"github.com/matheus3301/nikki/internal/remote"
	"github.com/matheus3301/nikki/internal/remote/google"
	"github.com/matheus3301/nikki/internal/status"
	"github.com/matheus3301/nikki/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile passed to the fx module.
type Params struct {
	Profile    string
	SocketPath string // optional override for testing; empty = use default
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideSettings,
			provideLogger,
			provideBus,
			provideTracker,
			provideLock,
			provideJournal,
			provideQueue,
			provideHistory,
			provideRemote,
			provideEngine,
			provideService,
			NewServer,
			provideMonitor,
			provideMetrics,
			provideWatcher,
		),
		fx.Invoke(registerLifecycle),
	)
}

// provideSettings loads settings.toml and resolves file paths against the
// profile directory.
func provideSettings(p Params) (*config.Settings, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	s, err := config.LoadSettings(profile.SettingsPath(p.Profile))
	if err != nil {
		return nil, err
	}
	s.CredentialsFile = profile.ResolvePath(p.Profile, s.CredentialsFile)
	if s.TokenFile == "" {
		s.TokenFile = profile.TokenPath(p.Profile)
	} else {
		s.TokenFile = profile.ResolvePath(p.Profile, s.TokenFile)
	}
	return s, nil
}

func provideLogger(p Params, s *config.Settings) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile, s.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideTracker(b *bus.Bus) *status.Tracker {
	return status.NewTracker(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideJournal(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	db, err := store.Open(profile.JournalPath(p.Profile))
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("journal migrated", zap.Uint("from", result.From), zap.Uint("to", result.Version))
	}
	logger.Info("journal ready", zap.String("path", db.Path()), zap.Uint("schema", result.Version))
	return db, nil
}

// The lock parameter orders file access after the single-instance check.
func provideQueue(p Params, _ *lock.Lock, logger *zap.Logger) *queue.Queue {
	q := queue.Open(profile.QueuePath(p.Profile), logger)
	logger.Info("offline queue loaded", zap.Int("pending", q.Len()))
	return q
}

func provideHistory(p Params, _ *lock.Lock, logger *zap.Logger) *history.Cache {
	return history.Open(profile.HistoryPath(p.Profile), logger)
}

func provideRemote(s *config.Settings, logger *zap.Logger) remote.Store {
	return google.New(google.Options{
		SpreadsheetID:   s.SpreadsheetID,
		SheetName:       s.SheetName,
		CredentialsFile: s.CredentialsFile,
		TokenFile:       s.TokenFile,
		DriveFolderID:   s.DriveFolderID,
	}, logger.Named("google"))
}

func provideEngine(st remote.Store, q *queue.Queue, h *history.Cache, tr *status.Tracker, db *store.DB, b *bus.Bus, s *config.Settings, logger *zap.Logger) *engine.Engine {
	return engine.New(st, q, h, tr, db, b, logger, engine.Options{
		DrainDelay:     s.DrainDelay.Duration,
		QueueWarnDepth: s.QueueWarnDepth,
	})
}

func provideService(p Params, e *engine.Engine, db *store.DB, b *bus.Bus, logger *zap.Logger) *api.Service {
	return api.NewService(p.Profile, e, db, b, logger)
}

func provideMonitor(s *config.Settings, e *engine.Engine, srv *Server, logger *zap.Logger) *monitor.Monitor {
	return monitor.New(s.MonitorInterval.Duration, e.Kick, logger.Named("monitor"), e.SessionProbe(), srv)
}

func provideMetrics(s *config.Settings, e *engine.Engine, logger *zap.Logger) *metrics.Server {
	return metrics.NewServer(s.MetricsAddr, func() metrics.Health {
		st := e.Status()
		h := metrics.Health{Status: "ok", QueueDepth: st.QueueDepth, Sheet: st.Collection}
		if !st.Session.Connected {
			h.Status = "offline"
		}
		return h
	}, logger)
}

func provideWatcher(p Params, s *config.Settings, e *engine.Engine, b *bus.Bus, logger *zap.Logger) (*config.Watcher, error) {
	return config.NewWatcher(profile.SettingsPath(p.Profile), newReloader(s.SheetName, e, b, logger), logger)
}

// newReloader applies settings edits that take effect without a restart.
// Only the sheet can change live; everything else is logged.
func newReloader(sheet string, e *engine.Engine, b *bus.Bus, logger *zap.Logger) func(*config.Settings) {
	return func(next *config.Settings) {
		b.Emit(bus.KindConfigReloaded, next)
		if next.SheetName == "" || next.SheetName == sheet {
			logger.Info("settings reloaded, no live changes")
			return
		}
		if err := e.SelectCollection(context.Background(), next.SheetName); err != nil {
			logger.Warn("sheet change not applied", zap.String("sheet", next.SheetName), zap.Error(err))
			return
		}
		sheet = next.SheetName
		logger.Info("sheet changed from settings", zap.String("sheet", sheet))
	}
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, e *engine.Engine, mon *monitor.Monitor, ms *metrics.Server, w *config.Watcher, logger *zap.Logger) {
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			// Start drain worker.
			e.Start(ctx)

			// Start gRPC server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			if err := ms.Start(); err != nil {
				logger.Warn("metrics server not started", zap.Error(err))
			}
			mon.Start(ctx)
			w.Start(ctx)

			// Connect and flush anything queued by a previous run.
			go func() {
				if err := e.Connect(ctx); err != nil {
					logger.Warn("initial connect failed, entries will be queued", zap.Error(err))
				}
				e.Kick()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			mon.Stop()
			e.Stop()
			if cancel != nil {
				cancel()
			}
			if err := ms.Stop(ctx); err != nil {
				logger.Warn("error stopping metrics server", zap.Error(err))
			}
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing journal", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
