package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"github.com/example/monarchbot/internal/ai"
	"github.com/example/monarchbot/internal/bot"
	"github.com/example/monarchbot/internal/config"
	"github.com/example/monarchbot/internal/database"
	"github.com/example/monarchbot/internal/ledger"
	"github.com/example/monarchbot/internal/logger"
	"github.com/example/monarchbot/internal/scanner"
	"github.com/example/monarchbot/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	store := database.NewStore(db)
	defer store.Close()
	log.Info("database ready", "driver", cfg.Database.Driver)

	if !cfg.LLMEnabled() {
		log.Warn("no LLM api key configured, chat replies will use fallback messages")
	}
	coach := ai.NewCoach(ai.New(cfg.LLM, log.With("component", "ai")), log.With("component", "coach"))
	l := ledger.New(store, scanner.Default(), log.With("component", "ledger"))

	b, err := bot.New(cfg.TelegramToken, bot.Deps{
		Store:  store,
		Ledger: l,
		Coach:  coach,
		Config: bot.DefaultConfig(),
	}, log.With("component", "bot"))
	if err != nil {
		return err
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		if sched, err = scheduler.New(cfg.Scheduler, store, b, log.With("component", "scheduler")); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(ctx)
	})
	if sched != nil {
		g.Go(func() error {
			<-ctx.Done()
			sched.Stop()
			return nil
		})
	}

	log.Info("bot started, press Ctrl+C to stop")
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("bot stopped successfully")
	return nil
}
