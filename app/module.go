// Package app wires the relay client into an fx application. The
// embedding program supplies the bridge.Transport and bridge.Notifier
// implementations; everything else (config, logging, lock, cache, bus,
// client) is provided here.
package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/openbridge/relay"
	"github.com/openbridge/relay/attachments"
	"github.com/openbridge/relay/bridge"
	"github.com/openbridge/relay/bus"
	"github.com/openbridge/relay/config"
	"github.com/openbridge/relay/internal/lock"
	"github.com/openbridge/relay/internal/logging"
	"github.com/openbridge/relay/internal/profile"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile     string
	ConfigPath  string // optional override for testing; empty = use default
	AutoConnect bool
}

// Module returns the fx module for the relay client, composing all
// providers and lifecycle hooks. The parent app must provide a
// bridge.Transport and a bridge.Notifier.
func Module(p Params) fx.Option {
	if p.Profile == "" {
		p.Profile = profile.DefaultName
	}
	return fx.Module("relay",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideCache,
			provideClient,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = profile.ConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		// First run: no config yet.
		return config.Default(), nil
	}
	return config.Load(path)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := profile.ValidateName(p.Profile); err != nil {
		return nil, err
	}
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	return logging.New(profile.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
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

func provideCache(p Params, logger *zap.Logger) (*attachments.Cache, error) {
	dbPath := profile.CacheDBPath(p.Profile)
	cache, err := attachments.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := cache.Migrate()
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("cache migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("cache migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("attachment cache initialized", zap.String("path", dbPath))
	return cache, nil
}

func provideClient(transport bridge.Transport, notifier bridge.Notifier, b *bus.Bus, cache *attachments.Cache, cfg *config.Config, logger *zap.Logger) *relay.Client {
	return relay.New(transport, notifier, b, cache, logger, relay.Options{
		Endpoint:          cfg.Endpoint,
		Password:          cfg.Password,
		PageSize:          cfg.PageSize,
		ConversationLimit: cfg.ConversationLimit,
		Notifications:     cfg.Notifications,
	})
}

func registerLifecycle(lc fx.Lifecycle, p Params, client *relay.Client, cfg *config.Config, cache *attachments.Cache, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			client.Start(context.Background())

			if p.AutoConnect && cfg.Endpoint != "" {
				go func() {
					if err := client.Connect(context.Background()); err != nil {
						logger.Error("auto-connect failed", zap.Error(err))
					}
				}()
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			client.Disconnect()
			client.Stop()
			if err := cache.Close(); err != nil {
				logger.Warn("error closing attachment cache", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
