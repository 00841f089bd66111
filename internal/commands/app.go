package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerengine/internal/commitlog"
	"github.com/cleared-dev/ledgerengine/internal/config"
	"github.com/cleared-dev/ledgerengine/internal/engine"
	"github.com/cleared-dev/ledgerengine/internal/journal"
	"github.com/cleared-dev/ledgerengine/internal/loan"
	"github.com/cleared-dev/ledgerengine/internal/logging"
	"github.com/cleared-dev/ledgerengine/internal/metrics"
	"github.com/cleared-dev/ledgerengine/internal/model"
	"github.com/cleared-dev/ledgerengine/internal/store"
)

const commitEventBuffer = 256

// ledger is where committed postings go and are read back from.
type ledger interface {
	engine.Ledger
	Month(ctx context.Context, year, month int) ([]model.Posting, error)
}

type sqliteLedger struct{ *store.DB }

func (l sqliteLedger) Month(ctx context.Context, year, month int) ([]model.Posting, error) {
	return l.Postings(ctx, year, month)
}

type csvLedger struct{ *journal.FileLedger }

func (l csvLedger) Month(_ context.Context, year, month int) ([]model.Posting, error) {
	return l.ReadMonth(year, month)
}

// app is the wired runtime behind every command that touches the books.
type app struct {
	root     string
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	db       *store.DB
	ledger   ledger
	engine   *engine.Engine
	loans    *loan.Service
	recorder *commitlog.Recorder

	metricsFile string
}

func openApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("%w (run `ledgerengine init` first)", err)
	}
	if err := config.ApplyEnv(cfg, opts.envFile); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(filepath.Dir(opts.configPath))
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	dbPath := cfg.Store.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	var l ledger
	switch cfg.Store.Ledger {
	case config.LedgerSQLite, "":
		l = sqliteLedger{db}
	case config.LedgerCSV:
		l = csvLedger{journal.NewFileLedger(filepath.Join(root, "journal"))}
	default:
		db.Close()
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Store.Ledger)
	}

	m := metrics.New()
	eng := engine.New(engine.Deps{
		Directory: db,
		Ledger:    l,
		Logger:    logger,
		Metrics:   m,
	})
	recorder := commitlog.NewRecorder(root, commitEventBuffer, logger)
	recorder.Start(ctx, eng)

	a := &app{
		root:     root,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		db:       db,
		ledger:   l,
		engine:   eng,
		recorder: recorder,
		loans: loan.NewService(db, loan.Options{
			Poster:                  eng,
			LateFeeDailyRatePercent: cfg.Loans.LateFeeDailyRatePercent,
			Logger:                  logger,
			Metrics:                 m,
		}),
		metricsFile: opts.metricsFile,
	}
	logger.Debug("opened ledger", zap.String("root", root), zap.String("db", dbPath))
	return a, nil
}

// Close flushes the commit log and metrics and closes the database.
func (a *app) Close() error {
	errs := []error{a.recorder.Close()}
	if a.metricsFile != "" {
		errs = append(errs, a.metrics.WriteTextfile(a.metricsFile))
	}
	errs = append(errs, a.db.Close())
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// withApp opens the app, runs fn and closes the app, keeping fn's error first.
func withApp(ctx context.Context, opts *globalOptions, fn func(*app) error) (err error) {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}
