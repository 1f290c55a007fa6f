// Package main is the entrypoint of the PLEXY Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/plexybot/internal/bot"
	"github.com/edgard/plexybot/internal/bot/handlers"
	"github.com/edgard/plexybot/internal/bot/tasks"
	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/httpapi"
	"github.com/edgard/plexybot/internal/intent"
	"github.com/edgard/plexybot/internal/knowledge"
	"github.com/edgard/plexybot/internal/logger"
	"github.com/edgard/plexybot/internal/storage"
	"github.com/edgard/plexybot/internal/telegram"
)

const closeTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, runs the bot until ctx is cancelled and
// returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	store := storage.Open(ctx, cfg.Storage, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}()
	if seed, err := knowledge.LoadSeed(); err != nil {
		log.Error("Failed to load seed data", "error", err)
	} else if _, err := store.ApplySeed(ctx, seed); err != nil {
		log.Warn("Failed to apply seed data", "error", err)
	}

	backend, err := generative.NewBackend(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI backend", "provider", cfg.AI.Provider, "error", err)
		return 1
	}
	ai := generative.NewBridge(cfg.AI, backend, log)
	classifier := intent.NewClassifier(ai, cfg.AI.IntentWithAI, log)
	eng := engine.New(store, ai, classifier, log)

	sessionStore, err := conversation.NewStoreFromConfig(ctx, cfg.Conversation)
	if err != nil {
		log.Error("Failed to open session store", "backend", cfg.Conversation.Backend, "error", err)
		return 1
	}
	sessions := conversation.NewManager(sessionStore, log)
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error("Failed to close session store", "error", err)
		}
	}()

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Engine:   eng,
		Sessions: sessions,
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Sessions: sessions,
		Config:   cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if _, err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var httpServer bot.Runner
	if cfg.HTTP.Enabled {
		httpServer = httpapi.NewServer(cfg.HTTP.Addr, httpapi.NewHandler(store, log), log)
	}

	app := bot.NewBot(log, tg, sched, httpServer)

	log.Info("Starting bot...", "store_degraded", store.Degraded())
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
