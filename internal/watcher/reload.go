package watcher

import (
	"go.uber.org/zap"

	"netseg/internal/config"
)

// Reloader re-reads the config file and hands the result to apply. A file
// that fails to load is logged and the running settings stay in place.
type Reloader struct {
	path   string
	apply  func(*config.Config)
	logger *zap.Logger
}

// NewReloader creates a reloader for the config file at path
func NewReloader(path string, apply func(*config.Config), logger *zap.Logger) *Reloader {
	return &Reloader{path: path, apply: apply, logger: logger}
}

// Reload loads the file and applies it
func (r *Reloader) Reload() {
	cfg, _, err := config.LoadFromPath(r.path)
	if err != nil {
		r.logger.Warn("config reload failed, keeping current settings",
			zap.String("path", r.path), zap.Error(err))
		return
	}
	r.apply(cfg)
	r.logger.Info("config reloaded", zap.String("summary", cfg.Summary()))
}

// Watcher returns a file watcher that calls Reload on change
func (r *Reloader) Watcher() *Watcher {
	return New(r.path, r.Reload, r.logger)
}
