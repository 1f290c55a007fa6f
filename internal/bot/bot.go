// Package bot runs the PLEXY bot: the Telegram listener, the task scheduler
// and the optional HTTP status server, stopping them together.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Listener receives Telegram updates until ctx is done. *bot.Bot from
// go-telegram/bot implements it.
type Listener interface {
	Start(ctx context.Context)
}

// Runner is a component that runs until ctx is done.
type Runner interface {
	Run(ctx context.Context) error
}

// Bot owns the lifecycle of the running components.
type Bot struct {
	logger    *slog.Logger
	listener  Listener
	scheduler *Scheduler
	http      Runner
}

// NewBot creates the orchestrator. httpServer may be nil.
func NewBot(logger *slog.Logger, listener Listener, scheduler *Scheduler, httpServer Runner) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		listener:  listener,
		scheduler: scheduler,
		http:      httpServer,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.listener.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.http != nil {
		g.Go(func() error {
			return b.http.Run(gCtx)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
