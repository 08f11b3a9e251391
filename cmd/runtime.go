package cmd

import (
	"context"
	"errors"
	"fmt"

	"payroll-monitor/core/audit"
	"payroll-monitor/core/config"
	"payroll-monitor/core/database"
	"payroll-monitor/core/ledger"
	"payroll-monitor/core/logger"
	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/records"
	"payroll-monitor/core/snapshot"
	"payroll-monitor/core/storage"
	"payroll-monitor/core/sweep"
	"payroll-monitor/feature/payroll"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the components shared by the server and the CLI commands.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *records.MemoryStore
	service *payroll.Service
	db      *gorm.DB
}

// newRuntime loads configuration, restores the last snapshot and wires the service.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	writer, err := newSnapshotWriter(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	store := records.NewMemoryStore()
	if _, err := writer.Restore(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}

	// Database is optional; without it check history is not kept.
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		if !errors.Is(err, database.ErrDisabled) {
			l.Warn("Optional database connection failed", zap.Error(err))
		}
	} else {
		db = conn
		l.Debug("Connected to audit database", zap.String("driver", cfg.Database.Driver))
	}
	repo := audit.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		l.Warn("Audit migration failed, history disabled", zap.Error(err))
		repo = audit.NewRepository(nil)
	}

	client, err := ledger.NewClient(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	engine := reconcile.NewEngine(store, client, cfg.Reconcile, l)
	sweeper := sweep.New(store, engine, cfg.Sweep, l)

	return &runtime{
		cfg:     cfg,
		logger:  l,
		store:   store,
		service: payroll.NewService(store, engine, sweeper, writer, repo, l),
		db:      db,
	}, nil
}

func newSnapshotWriter(ctx context.Context, cfg *config.Config, l *zap.Logger) (*snapshot.Writer, error) {
	var sinks []snapshot.Sink
	if cfg.Snapshot.Path != "" {
		sinks = append(sinks, snapshot.NewFileSink(cfg.Snapshot.Path))
	}
	if cfg.Snapshot.Upload {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			l.Warn("Snapshot bucket unavailable", zap.Error(err))
		}
		sinks = append(sinks, snapshot.NewObjectSink(client, cfg.Storage.Bucket, cfg.Snapshot.ObjectName))
	}
	return snapshot.NewWriter(l, sinks...), nil
}

// Close stops background work and releases connections.
func (r *runtime) Close() {
	r.service.Close()
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = r.logger.Sync()
}
