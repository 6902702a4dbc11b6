package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/danhigham/tgshell/internal/config"
	"github.com/danhigham/tgshell/internal/core"
	"github.com/danhigham/tgshell/internal/events"
	"github.com/danhigham/tgshell/internal/replay"
	"github.com/danhigham/tgshell/internal/restart"
	"github.com/danhigham/tgshell/internal/state"
	"github.com/danhigham/tgshell/internal/telegram"
	"github.com/danhigham/tgshell/internal/ui"
	"github.com/danhigham/tgshell/internal/update"
)

// source is an update source that also serves chat data to the UI.
type source interface {
	core.Source
	telegram.Client
	Run(ctx context.Context) error
}

var (
	_ source = (*telegram.GotdClient)(nil)
	_ source = (*replay.Source)(nil)
)

func main() {
	cfgDir := config.Dir()
	cfgPath := flag.String("config", filepath.Join(cfgDir, "config.yaml"), "path to the config file")
	replayPath := flag.String("replay", "", "replay recorded updates from a JSON lines file instead of connecting")
	replayDelay := flag.Duration("replay-delay", 500*time.Millisecond, "pause between replayed updates")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	switch {
	case err == nil:
	case *replayPath != "":
		cfg = config.Default()
	default:
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", *cfgPath, err)
		fmt.Fprintf(os.Stderr, "\nCreate the config file with:\n")
		fmt.Fprintf(os.Stderr, "  mkdir -p %s\n", filepath.Dir(*cfgPath))
		fmt.Fprintf(os.Stderr, "  cat > %s << 'EOF'\n", *cfgPath)
		fmt.Fprintf(os.Stderr, "telegram:\n  api_id: YOUR_API_ID\n  api_hash: \"YOUR_API_HASH\"\nEOF\n")
		fmt.Fprintf(os.Stderr, "\nGet API credentials from https://my.telegram.org\n")
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.SessionDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session dir: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create config dir: %v\n", err)
		os.Exit(1)
	}

	// Setup logging to file; the terminal belongs to the UI.
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log_level %q: %v\n", cfg.LogLevel, err)
		os.Exit(1)
	}
	logPath := filepath.Join(cfgDir, "tgshell.log")
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = level
	logCfg.OutputPaths = []string{logPath}
	logCfg.ErrorOutputPaths = []string{logPath}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create store (drawFunc will be set after app is created)
	store := state.New(nil)
	authFlow := telegram.NewTUIAuth()

	var src source
	if *replayPath != "" {
		f, err := os.Open(*replayPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open replay file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		src = replay.NewSource(f, *replayDelay, store, logger.Named("replay"))
	} else {
		src = telegram.NewGotdClient(
			cfg.Telegram.APIID,
			cfg.Telegram.APIHash,
			cfg.SessionDir,
			store,
			authFlow,
			logger.Named("gotd"),
		)
	}

	bridge := core.NewChatBridge(store, src, logger.Named("selection"))

	var dispatcher *core.Dispatcher
	app := ui.NewApp(ui.Options{
		Store:  store,
		Client: src,
		Bridge: bridge,
		Auth:   authFlow,
		ChangePhone: func() {
			dispatcher.Auth().ChangePhone()
			authFlow.RestartLogin()
		},
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logger.Named("ui"),
	})

	// Now wire drawFunc and scrolling
	store.SetDrawFunc(app.DrawFunc())
	bridge.SetScroller(app)

	dispatcher = core.NewDispatcher(core.Config{
		Store:       store,
		Source:      src,
		Prompter:    app,
		Restarter:   app.Restarter(restart.Exec{Logger: logger.Named("restart")}),
		Logger:      logger,
		MailboxSize: cfg.MailboxSize,
	})
	release := dispatcher.Attach()
	defer release()

	// Log what arrives on the update stream at debug level.
	releaseTrace := src.Subscribe(events.TopicUpdate, func(ev update.Event) {
		logger.Debug("Update", zap.String("type", ev.TypeName()))
	})
	defer releaseTrace()

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Dispatcher stopped", zap.Error(err))
		}
	}()

	go func() {
		if err := src.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Update source stopped", zap.Error(err))
		}
	}()

	// Run TUI (blocks until quit)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cancel()
	if err := dispatcher.Wait(); err != nil {
		logger.Warn("Pending work failed", zap.Error(err))
	}
	store.Teardown()
}
