package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fardannozami/faccao-bot/internal/config"
	"github.com/fardannozami/faccao-bot/internal/domain"
	"github.com/fardannozami/faccao-bot/internal/infra/sqlite"
	"github.com/fardannozami/faccao-bot/internal/metrics"
)

// App holds everything built once at startup and shared by the handlers.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	DB       *sql.DB
	Deposits *sqlite.DepositRepository
	Rooms    *sqlite.RoomRepository
	Goals    domain.GoalTable
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	goals, err := config.LoadGoals(cfg.GoalsFile)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Annotate(err, "creating database dir")
		}
	}
	// WAL and busy timeout avoid "database is locked" next to whatsmeow's connection.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.SQLitePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Annotate(err, "opening database")
	}

	deposits := sqlite.NewDepositRepository(db)
	if err := deposits.InitTable(ctx); err != nil {
		db.Close()
		return nil, errors.Trace(err)
	}
	rooms := sqlite.NewRoomRepository(db)
	if err := rooms.InitTable(ctx); err != nil {
		db.Close()
		return nil, errors.Trace(err)
	}

	m := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(m, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	logger.Info("goals loaded",
		zap.Int("roles", len(goals.Roles)),
		zap.Int64("default_goal", goals.DefaultGoal))

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Deposits: deposits,
		Rooms:    rooms,
		Goals:    goals,
		Metrics:  m,
		Registry: registry,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
