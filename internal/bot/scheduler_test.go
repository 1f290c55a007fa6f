package bot_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/bot"
	"github.com/edgard/plexybot/internal/bot/tasks"
	"github.com/edgard/plexybot/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsEnabledTasks(t *testing.T) {
	t.Parallel()

	var enabledRuns, disabledRuns atomic.Int32
	ran := make(chan struct{}, 10)
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"enabled": func(context.Context) error {
			enabledRuns.Add(1)
			ran <- struct{}{}
			return errors.New("failures are logged, not fatal")
		},
		"disabled": func(context.Context) error {
			disabledRuns.Add(1)
			return nil
		},
		"bad": func(context.Context) error { return nil },
	}
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":  {Enabled: true, Schedule: "* * * * * *"},
		"disabled": {Enabled: false, Schedule: "* * * * * *"},
		"missing":  {Enabled: true, Schedule: "* * * * * *"},
		"bad":      {Enabled: true, Schedule: "not a cron"},
	}}

	s, err := bot.NewScheduler(discard(), cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.Error(t, s.Start(), "second start")

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("enabled task did not run")
	}
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "stop is idempotent")

	assert.GreaterOrEqual(t, enabledRuns.Load(), int32(1))
	assert.Zero(t, disabledRuns.Load())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	s, err := bot.NewScheduler(discard(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Stop())
	require.Error(t, s.Start())
}
