// Command demo runs the game chart end to end: a token boots through
// LOADER and INTRO into MENU, plays a level, dies, enters the cheat code for
// the configuration screen, and finally escapes to EXIT, which consumes it.
//
// The walkthrough is scripted; the demo exists to show the wiring of a full
// deployment: env-driven config, a Runner ticking the machine, a LogObserver
// narrating dispatches, and a Hub subscription watching for completion.
//
// Configuration (environment, .env file honored):
//
//	DEMO_STEP_INTERVAL  delay between scripted events (default 250ms)
//	DEMO_TICK_INTERVAL  runner tick period             (default 50ms)
//	DEMO_LOG_LEVEL      slog level                     (default INFO)
//	DEMO_LOG_FORMAT     "text" or "json"               (default text)
//	DEMO_DOT_FILE       write the chart as DOT here    (optional)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tokenflow/tokenfsm"
	"github.com/tokenflow/tokenfsm/action"
	"github.com/tokenflow/tokenfsm/builder"
	"github.com/tokenflow/tokenfsm/dot"
	"github.com/tokenflow/tokenfsm/driver"
)

type config struct {
	StepInterval time.Duration `env:"DEMO_STEP_INTERVAL" envDefault:"250ms"`
	TickInterval time.Duration `env:"DEMO_TICK_INTERVAL" envDefault:"50ms"`
	LogLevel     slog.Level    `env:"DEMO_LOG_LEVEL" envDefault:"INFO"`
	LogFormat    string        `env:"DEMO_LOG_FORMAT" envDefault:"text"`
	DotFile      string        `env:"DEMO_DOT_FILE"`
}

func (c config) logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

const (
	loader        = "LOADER"
	intro         = "INTRO"
	menu          = "MENU"
	getReady      = "GET_READY"
	level         = "LEVEL"
	levelFinish   = "LEVEL_FINISH"
	gameOver      = "GAME_OVER"
	configuration = "CONFIGURATION"
	exit          = "EXIT"
)

var script = []string{
	"DONE", "DONE", // boot into MENU
	"START", "DONE", // into LEVEL
	"COMPLETE", "DONE", "DONE", // finish it, next level
	"DEAD", "DONE", // die, back to MENU
	"FIRE_A", "FIRE_B", // cheat code opens CONFIGURATION
	"FIRE_A", // lone key drops to INTRO
	"DONE", "ESCAPE", // back to MENU, escape to EXIT
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	logger := cfg.logger()

	machine, err := buildGame(logger)
	if err != nil {
		return fmt.Errorf("build machine: %w", err)
	}

	if cfg.DotFile != "" {
		if err := os.WriteFile(cfg.DotFile, dot.Marshal(machine.Definition()), 0o644); err != nil {
			return fmt.Errorf("write dot file: %w", err)
		}
		logger.Info("wrote chart", "path", cfg.DotFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := driver.NewHub[string, string](16)
	defer hub.Close()

	drv := driver.New(machine, driver.Config[string, string]{
		Observers: []driver.Observer[string, string]{
			driver.NewLogObserver[string, string](logger),
			hub,
		},
	})

	// Completion watcher: EXIT consumes the only token, leaving the active
	// set empty. Subscribed without the signal context: Close waits for
	// context watchers, and the deferred Close runs before stop.
	consumed := make(chan struct{})
	sub := hub.Subscribe(context.Background())
	go func() {
		for n := range sub.C() {
			if n.Kind == driver.KindEvent && len(n.Active) == 0 {
				close(consumed)
				return
			}
		}
	}()

	runner := driver.NewRunner(drv, driver.RunnerConfig{TickInterval: cfg.TickInterval})
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start runner: %w", err)
	}
	defer runner.Stop()

	for _, event := range script {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			return nil
		case <-time.After(cfg.StepInterval):
		}
		if err := runner.Send(event); err != nil {
			return fmt.Errorf("send %s: %w", event, err)
		}
	}

	select {
	case <-consumed:
		logger.Info("token consumed, game over")
	case <-ctx.Done():
		logger.Info("interrupted")
	case <-time.After(30 * time.Second):
		return fmt.Errorf("script finished but token never consumed; active: %v", machine.ActiveStates())
	}
	return nil
}

// buildGame wires the game chart with a narrated entry action per state.
func buildGame(logger *slog.Logger) (*tokenfsm.Machine[string, string, int], error) {
	b := builder.New[string, string, int](0, tokenfsm.WithID("game-demo"))

	b.State(loader).AsStart().On("DONE").Then(intro)
	b.State(exit).AsEnd()
	b.State(intro).On("DONE").Then(menu)
	b.State(menu).On("START").Then(getReady).On("ESCAPE").Then(exit)
	b.State(getReady).On("DONE").Then(level)
	b.State(levelFinish).On("DONE").Then(getReady)
	b.State(level).On("DEAD").Then(gameOver).On("COMPLETE").Then(levelFinish)
	b.State(gameOver).On("DONE").Then(menu)
	b.States(loader, intro, menu, getReady, level, levelFinish, gameOver, configuration, exit).
		Except(menu, loader, exit).
		On("ESCAPE").Then(menu)
	b.State(menu).On("FIRE_A", "FIRE_B").Then(configuration)
	b.State(configuration).On("FIRE_A", "FIRE_B").Then(menu)
	b.State(configuration).On("FIRE_A").Then(intro)

	for _, state := range []string{loader, intro, menu, getReady, level, levelFinish, gameOver, configuration, exit} {
		b.State(state).OnEntry(action.Log(logger, "entered", slog.String("state", state)))
	}

	return b.Build()
}
