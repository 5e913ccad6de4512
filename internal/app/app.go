package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/vk/hostgrid/internal/ctxlog"
	"github.com/vk/hostgrid/internal/inventory"
)

var (
	// ErrNotLoaded is returned by the commands when Load has not succeeded.
	ErrNotLoaded = errors.New("inventory not loaded")
	// ErrUnknownGroup is returned for a group name the inventory lacks.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrUnknownHost is returned for a host name the inventory lacks.
	ErrUnknownHost = errors.New("unknown host")
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	inv    *inventory.Inventory
}

// NewApp is the constructor for the main application. Command output goes
// to outW and log records to logW, through the App's own logger.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.", "level", cfg.LogLevel, "format", cfg.LogFormat)

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
}

// Inventory returns the loaded inventory, or nil before Load.
func (a *App) Inventory() *inventory.Inventory {
	return a.inv
}

// context attaches the App's logger to ctx.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
