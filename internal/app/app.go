// Package app wires configuration into a service.Service: it picks the slot
// backend, opens the task store and builds the post browser.
package app

import (
	"context"
	"fmt"
	"io"

	"taskflow/internal/backend/filekv"
	"taskflow/internal/backend/jsonplaceholder"
	"taskflow/internal/backend/rediskv"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/posts"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/tasks"
)

// App owns all mutable state of a session.
type App struct {
	kv      storage.KV
	store   *tasks.Store
	browser *posts.Browser
	closers []io.Closer
}

// New builds an App from cfg.
//
// If the redis backend cannot be reached the session falls back to memory
// storage and logs a warning, matching the degraded mode of storage.Slot.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	kv, err := a.openKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.kv = kv

	src, err := jsonplaceholder.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create posts client: %w", err)
	}

	a.store = tasks.Open(ctx, kv)
	a.browser = posts.NewBrowser(src)
	return a, nil
}

// NewWith builds an App from explicit collaborators.
func NewWith(ctx context.Context, kv storage.KV, src service.PostSource, opts ...tasks.Option) *App {
	return &App{
		kv:      kv,
		store:   tasks.Open(ctx, kv, opts...),
		browser: posts.NewBrowser(src),
	}
}

func (a *App) openKV(ctx context.Context, cfg *config.Config) (storage.KV, error) {
	log := logger.With("component", "app", "store", cfg.Store)

	switch cfg.Store {
	case config.StoreMemory:
		return storage.NewMemory(), nil
	case config.StoreRedis:
		rs, err := rediskv.Dial(ctx, rediskv.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis unavailable, tasks will not be persisted", "error", err)
			return storage.NewMemory(), nil
		}
		a.closers = append(a.closers, rs)
		return rs, nil
	case config.StoreFile, "":
		log.Debug("using file store", "dir", cfg.StoreDir())
		return filekv.New(cfg.StoreDir()), nil
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Store)
	}
}

// Tasks implements service.Service.
func (a *App) Tasks() service.TaskStore { return a.store }

// Posts implements service.Service.
func (a *App) Posts() service.PostBrowser { return a.browser }

// Close releases backend connections.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

var _ service.Service = (*App)(nil)
