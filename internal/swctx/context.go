package swctx

import (
	"context"
	"io"
	"log/slog"

	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/driver"
	"github.com/5l1v3r1/sw/internal/driver/nativehcl"
	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/registryclient"
	"github.com/5l1v3r1/sw/internal/servicedb"
	"github.com/5l1v3r1/sw/internal/storage"
	"resty.dev/v3"
)

// builtinDriverPath is the synthetic package path the built-in HCL-manifest
// driver is registered under. It never resolves against a real registry.
const builtinDriverPath = "sw.driver.nativehcl"

// Context wires every subsystem a build needs: the logger, on-disk storage
// layout, per-package locks, service database, driver registry, and the
// registry/download HTTP clients. It replaces per-package singletons.
type Context struct {
	Config Config
	Logger *slog.Logger

	Layout   *storage.Layout
	Locks    *storage.PackageLocks
	DB       *servicedb.DB
	Drivers  *driver.Registry
	Registry *registryclient.Client
	download *resty.Client
}

// New builds a Context from cfg: it opens (or creates) the service database
// under cfg.StorageRoot, registers the built-in native-source driver, and
// constructs a registry client unless NoNetwork is set or RegistryURL is
// empty.
func New(cfg Config, outW io.Writer) (*Context, error) {
	logger := newLogger(cfg.Verbose, cfg.Trace, outW)

	layout := storage.New(cfg.StorageRoot)
	db, err := servicedb.Open(layout.DBDir())
	if err != nil {
		return nil, err
	}

	drivers := driver.NewRegistry()
	builtinId := pkg.Id{Path: pkg.NewPath(builtinDriverPath), Version: pkg.MustParseVersion("0.0.0")}
	drivers.Register(builtinId, nativehcl.New())

	var registry *registryclient.Client
	if !cfg.NoNetwork && cfg.RegistryURL != "" {
		registry = registryclient.New(cfg.RegistryURL)
	}

	return &Context{
		Config:   cfg,
		Logger:   logger,
		Layout:   layout,
		Locks:    storage.NewPackageLocks(),
		DB:       db,
		Drivers:  drivers,
		Registry: registry,
		download: resty.New(),
	}, nil
}

// levelTrace sits one notch below slog.LevelDebug. It is the handler level
// newLogger selects when trace is set; no call site in the module logs at
// this level itself.
const levelTrace = slog.Level(-8)

// newLogger builds an isolated *slog.Logger: JSON at info level by default,
// text at debug level when verbose is set, text at trace level when trace is
// set. trace implies verbose's text handler. It does not touch the global
// logger.
func newLogger(verbose, trace bool, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case trace:
		level = levelTrace
	case verbose:
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if verbose || trace {
		handler = slog.NewTextHandler(outW, opts)
	} else {
		handler = slog.NewJSONHandler(outW, opts)
	}
	return slog.New(handler)
}

// WithLogger returns ctx carrying this Context's logger, for every
// subsystem call that expects one via ctxlog.FromContext.
func (c *Context) WithLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, c.Logger)
}

// Close releases the Context's network resources.
func (c *Context) Close() error {
	c.download.Close()
	if c.Registry != nil {
		return c.Registry.Close()
	}
	return nil
}
