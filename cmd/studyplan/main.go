package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyplan/internal/agenda"
	"github.com/sandeepkv93/studyplan/internal/config"
	"github.com/sandeepkv93/studyplan/internal/logging"
	"github.com/sandeepkv93/studyplan/internal/planner"
	"github.com/sandeepkv93/studyplan/internal/reminder"
	"github.com/sandeepkv93/studyplan/internal/scheduler"
	"github.com/sandeepkv93/studyplan/internal/storage"
	"github.com/sandeepkv93/studyplan/internal/store"
	"github.com/sandeepkv93/studyplan/internal/update"
)

func main() {
	var opts config.LoadOptions
	flag.StringVar(&opts.ConfigFile, "config", "", "path to a studyplan.yaml config file")
	flag.StringVar(&opts.EnvFile, "env", "", "path to a .env file")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "studyplan failed: %v\n", err)
		os.Exit(1)
	}
}

func run(opts config.LoadOptions) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	filter, err := agenda.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		return err
	}

	log, logCloser, err := logging.New(cfg.LogFile, cfg.LogVerbosity)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()

	slot, closer, err := openSlot(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	log.Info("storage ready", "backend", cfg.Storage, "path", cfg.DataPath, "config", cfg.ConfigFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(slot, store.WithLogger(log.WithName("store")))
	loaded := st.Load(ctx)
	if at, ok := st.LastSaved(ctx); ok {
		log.Info("tasks loaded", "count", len(loaded), "lastSaved", at.Local().Format(time.DateTime))
	} else {
		log.Info("tasks loaded", "count", len(loaded))
	}

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	rem := reminder.New(engine,
		reminder.WithHorizon(cfg.ReminderHorizon),
		reminder.WithNotifier(reminder.NewExecNotifier()),
		reminder.WithPermission(reminder.ParsePermission(cfg.DesktopNotifications)),
		reminder.WithLogger(log.WithName("reminder")),
	)
	svc := planner.New(st, rem, planner.WithLogger(log.WithName("planner")))

	model := update.NewModel(svc,
		update.WithContext(ctx),
		update.WithFilter(filter),
		update.WithLogger(log.WithName("ui")),
	)
	_, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	// also saves when the program was killed rather than quit
	if err := svc.Flush(ctx); err != nil {
		log.Error(err, "final save failed")
		return errors.Join(runErr, fmt.Errorf("save tasks: %w", err))
	}
	return runErr
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openSlot(cfg config.RuntimeConfig) (storage.Slot, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemorySlot(), nopCloser{}, nil
	case config.StorageFile:
		slot, err := storage.NewFileSlot(cfg.DataPath)
		if err != nil {
			return nil, nil, err
		}
		return slot, nopCloser{}, nil
	default:
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		slot, err := storage.OpenSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return slot, slot, nil
	}
}
