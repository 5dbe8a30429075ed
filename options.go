package palisade

import (
	"log/slog"

	"github.com/mapfort/palisade/catalog"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStorage sets the raw catalog storage backend.
func WithStorage(s catalog.Storage) Option { return func(e *Engine) { e.storage = s } }

// WithAccessManager sets the access-limits provider.
func WithAccessManager(m AccessManager) Option { return func(e *Engine) { e.access = m } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }
