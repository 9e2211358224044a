package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/config"
	"github.com/SeamusWaldron/cubegate/internal/logging"
	"github.com/SeamusWaldron/cubegate/internal/recorder"
	"github.com/SeamusWaldron/cubegate/internal/storage"
	"github.com/SeamusWaldron/cubegate/internal/unlock"
)

// app holds what every command needs: configuration, a logger and the
// journal, if enabled.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *storage.DB

	journal *recorder.Session
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if noJournal {
		cfg.Storage.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads configuration and opens the journal. logOutputs overrides
// the log destination; commands that own the terminal log to a file.
func newApp(logOutputs ...string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if len(logOutputs) == 0 {
		logOutputs = []string{"stderr"}
	}
	logger, err := logging.NewWithOutput(cfg.Log.Level, cfg.Log.Format, logOutputs...)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if cfg.Storage.Enabled {
		db, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		a.db = db
		logger.Debug("journal opened", zap.String("path", db.Path()))
	}
	return a, nil
}

// openDB opens the journal regardless of storage.enabled, for commands that
// only read it.
func openDB() (*storage.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return db, nil
}

// newEngine builds an engine with the configured timeout and logger.
func (a *app) newEngine(animator cubegate.Animator, extra ...cubegate.Option) *cubegate.Engine {
	opts := []cubegate.Option{
		cubegate.WithAnimator(animator),
		cubegate.WithMoveTimeout(a.cfg.Animation.Timeout),
		cubegate.WithLogger(a.logger),
	}
	return cubegate.New(append(opts, extra...)...)
}

// links builds the unlock registry from the configured targets and attaches
// it to e.
func (a *app) links(e *cubegate.Engine) *unlock.Registry {
	targets := make(map[cubegate.Face]unlock.Target)
	for f, t := range a.cfg.FaceTargets() {
		targets[f] = unlock.Target{Title: t.Title, URL: t.URL}
	}
	r := unlock.NewRegistry(targets)
	r.Attach(e)
	return r
}

// startJournal records e under source. It is a no-op without a journal.
func (a *app) startJournal(e *cubegate.Engine, source string, seed *uint64) error {
	if a.db == nil {
		return nil
	}
	a.journal = recorder.NewSession(a.db, a.logger)
	if _, err := a.journal.Start(source, seed, ""); err != nil {
		return err
	}
	a.journal.Attach(e)
	return nil
}

// finish closes the engine, ends the journal session and reports a
// consistency fault as the command's error.
func (a *app) finish(e *cubegate.Engine) error {
	fault := e.Fault()
	_ = e.Close()

	if a.journal != nil && a.journal.State() == recorder.StateRecording {
		if err := a.journal.End(e.Fingerprint()); err != nil {
			a.logger.Error("failed to end journal session", zap.Error(err))
		}
		if n, err := a.journal.Failures(); n > 0 {
			a.logger.Warn("journal writes failed", zap.Int("count", n), zap.Error(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()

	if fault != nil {
		a.logger.Error("engine faulted", zap.Error(fault))
		return fault
	}
	return nil
}

// journalID returns the active session id, or "" without a journal.
func (a *app) journalID() string {
	if a.journal == nil {
		return ""
	}
	return a.journal.SessionID()
}
