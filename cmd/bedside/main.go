package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/bedside/internal/audio"
	"github.com/alexanderramin/bedside/internal/cli"
	"github.com/alexanderramin/bedside/internal/config"
	"github.com/alexanderramin/bedside/internal/db"
	"github.com/alexanderramin/bedside/internal/platform"
	"github.com/alexanderramin/bedside/internal/repository"
	"github.com/alexanderramin/bedside/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		database *sql.DB
		engine   *audio.Engine
	)
	defer func() {
		if engine != nil {
			_ = engine.Close()
		}
		if database != nil {
			database.Close()
		}
	}()

	app := &cli.App{
		Now: time.Now,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
		Launcher: func() (platform.Launcher, error) {
			return platform.NewLauncher("run")
		},
	}

	app.Bootstrap = func(app *cli.App) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		logger := cfg.Logger(os.Stderr)
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		database, err = db.OpenDB(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}

		// Wire repositories and the unit of work for transactional operations
		alarmRepo := repository.NewSQLiteAlarmRepo(database).InLocation(loc)
		uow := db.NewSQLiteUnitOfWork(database)

		opts := cfg.EngineOptions()
		opts.Logger = logger
		engine = audio.NewEngine(audio.NewOtoBackend(), opts)

		app.Now = func() time.Time { return time.Now().In(loc) }
		app.Config = cfg
		app.Logger = logger
		app.Alarms = service.NewAlarmService(alarmRepo, uow, service.NewLogUseCaseObserver(logger))
		app.Machine = service.NewRingingMachine(alarmRepo, engine, cfg.RingingConfig(), logger)
		app.Player = engine
		return nil
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
