package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/witchwood/sim/internal/config"
	"github.com/witchwood/sim/internal/data"
	"github.com/witchwood/sim/internal/game"
	"github.com/witchwood/sim/internal/scripting"
	"github.com/witchwood/sim/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(mapName, seed string) {
	fmt.Println()
	fmt.Println("\033[35;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[35;1m  │\033[0m              Witchwood  v0.1.0            \033[35;1m│\033[0m")
	fmt.Println("\033[35;1m  │\033[0m        headless forest simulation         \033[35;1m│\033[0m")
	fmt.Println("\033[35;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mmap:\033[0m %s \033[90m(seed: %s)\033[0m\n\n", mapName, seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load map and entity kinds
	m, err := data.LoadMap(cfg.Game.Map)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	kinds := data.DefaultKinds()
	if cfg.Game.Kinds != "" {
		if kinds, err = data.LoadKinds(cfg.Game.Kinds); err != nil {
			return fmt.Errorf("load kinds: %w", err)
		}
	}

	printBanner(m.Info.Name, cfg.Game.Seed)
	printSection("data")
	printStat("map width", m.Info.Width)
	printStat("map height", m.Info.Height)
	printStat("free interior tiles", len(m.Grid.FreeInset(cfg.Spawn.EdgeMargin)))

	// 4. Lua overrides
	var scripts system.WitchScripts
	if cfg.AI.ScriptsDir != "" {
		engine, err := scripting.NewEngine(cfg.AI.ScriptsDir, log.Named("lua"))
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		scripts = engine
		printOK(fmt.Sprintf("lua hooks loaded from %s", cfg.AI.ScriptsDir))
	}
	fmt.Println()

	// 5. Screen state machine
	app := game.NewApp(func(round int) (*game.Game, error) {
		rc := *cfg
		rc.Game.Seed = roundSeed(cfg.Game.Seed, round)
		return game.New(&rc, m, kinds, scripts, log)
	}, log)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop started (tick: %s, rounds: %d)", cfg.Game.TickRate, cfg.Game.Rounds))
	fmt.Println()

	var pilot autopilot
	for {
		select {
		case <-ticker.C:
			switch app.Screen() {
			case game.ScreenTitle:
				if app.Rounds() >= cfg.Game.Rounds {
					app.Quit()
					continue
				}
				if err := app.Start(); err != nil {
					return fmt.Errorf("start round %d: %w", app.Rounds()+1, err)
				}
				pilot = autopilot{}
			case game.ScreenGame:
				g := app.Game()
				in := pilot.Next(g)
				if app.Frame(in) == game.ScreenGame && cfg.Game.MaxFrames > 0 && g.Frame() >= cfg.Game.MaxFrames {
					var stats frameStats
					g.Draw(&stats)
					log.Info("player survived",
						zap.Int("frames", g.Frame()),
						zap.Int("drawn", stats.Total()))
					app.End()
				}
			case game.ScreenQuit:
				log.Info("quit", zap.Int("rounds", app.Rounds()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			app.Quit()
			return nil
		}
	}
}

func roundSeed(seed string, round int) string {
	if round == 0 {
		return seed
	}
	return fmt.Sprintf("%s#%d", seed, round)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
