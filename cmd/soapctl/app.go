package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"soapcore/internal/blob"
	"soapcore/internal/config"
	"soapcore/internal/core"
	"soapcore/internal/infra/persistence/memory"
	"soapcore/internal/infra/persistence/postgres"
	"soapcore/internal/infra/persistence/sqlite"
	"soapcore/internal/platform/logging"
	"soapcore/internal/platform/otel"
	"soapcore/internal/snapshot"
	"soapcore/internal/transport"
)

type rootOptions struct {
	configPath string
	endpoint   string
	logLevel   string
}

// app is everything one command invocation needs, built from config.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	client   *core.Client
	store    *memory.Store
	persist  core.Snapshotter
	registry *prometheus.Registry
	closers  []func(context.Context) error
}

func loadConfig(opts rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, cfg.Validate()
}

func openApp(ctx context.Context, opts rootOptions, stderr io.Writer) (_ *app, retErr error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	defer func() {
		if retErr != nil {
			_ = a.close(ctx)
		}
	}()

	tp, err := transport.New(transport.Options{
		Endpoint:      cfg.Endpoint,
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		Token:         cfg.Token,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	store, snapshotter, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store, a.persist = store, snapshotter

	tracer, shutdown, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	metrics, err := core.NewPrometheusMetricsRecorder(a.registry)
	if err != nil {
		return nil, err
	}

	clientOpts := []core.ClientOption{
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithTracer(core.NewOTelTracer(tracer)),
	}
	if snapshotter != nil {
		clientOpts = append(clientOpts, core.WithSnapshotter(snapshotter))
	}
	a.client = core.NewClient(tp, store, clientOpts...)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (*memory.Store, core.Snapshotter, error) {
	switch a.cfg.Persistence.Driver {
	case "sqlite":
		s, err := sqlite.NewStore(ctx, a.cfg.Persistence.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		return s.Store, s, nil
	case "postgres":
		s, err := postgres.NewStore(ctx, a.cfg.Persistence.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		return s.Store, s, nil
	default:
		return memory.NewStore(), nil, nil
	}
}

// archiver opens the configured blob store over the entity store.
func (a *app) archiver(ctx context.Context) (*snapshot.Archiver, error) {
	blobs, err := blob.Open(ctx, a.cfg.Blob)
	if err != nil {
		return nil, err
	}
	return snapshot.NewArchiver(a.store, blobs, snapshot.WithLogger(a.logger)), nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
