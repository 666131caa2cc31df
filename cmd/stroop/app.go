package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/stroop/internal/config"
	"github.com/verte-zerg/stroop/internal/logger"
	"github.com/verte-zerg/stroop/internal/metrics"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/store"
)

// app bundles what every command opens and closes.
type app struct {
	store       store.ProfileStore
	metrics     *metrics.Manager
	log         logger.Logger
	logCloser   io.Closer
	metricsFile string
}

// setup resolves the store and log settings and opens them. TUI commands
// log to a file so the alternate screen stays intact.
func setup(cmd *cobra.Command, fileCfg config.FileConfig, tuiMode bool) (*app, error) {
	applyStringConfig(cmd, "store", &storeBackend, fileCfg.Store.Backend)
	applyStringConfig(cmd, "store-path", &storePath, fileCfg.Store.Path)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	a := &app{metrics: metrics.NewManager()}
	if fileCfg.Metrics.File != nil {
		a.metricsFile = *fileCfg.Metrics.File
	}

	if tuiMode {
		logPath := config.DefaultLogPath()
		if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
			logPath = *fileCfg.Log.File
		}
		closer, err := logger.InitFile(logPath, logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to init logger: %w", err)
		}
		a.logCloser = closer
	} else if err := logger.Init(os.Stderr, logLevel); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	a.log = logger.Named("stroop")

	st, err := openStore(storeBackend, storePath, a.log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = st
	return a, nil
}

// openStore opens the configured backend. Corrupt data falls back to an
// in-memory store so a test can still run.
func openStore(backend, path string, log logger.Logger) (store.ProfileStore, error) {
	if path == "" {
		path = config.DefaultStorePath(backend)
	}
	st, err := store.Open(backend, path)
	if err == nil {
		return st, nil
	}
	if errors.Is(err, store.ErrCorrupt) {
		log.Warn(context.Background(), "profile store unusable, results will not persist",
			logger.String("backend", backend),
			logger.String("path", path),
			logger.Error(err),
		)
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("failed to open store: %w", err)
}

func (a *app) close() {
	ctx := context.Background()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Error(ctx, "failed to close store", logger.Error(err))
		}
	}
	if a.metricsFile != "" {
		if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
			a.log.Error(ctx, "failed to write metrics", logger.Error(err))
		}
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			logErrf("failed to close log file: %v\n", err)
		}
	}
}

// loadProfiles reads every profile. A load failure is logged and the empty
// mapping the store returns is used.
func (a *app) loadProfiles(ctx context.Context) model.Profiles {
	profiles, err := a.store.Load(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to load profiles", logger.Error(err))
		a.metrics.StoreFailed("load")
	}
	if profiles == nil {
		profiles = model.Profiles{}
	}
	return profiles
}
