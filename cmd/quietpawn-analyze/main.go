// quietpawn-analyze drives a UCI chess engine from the terminal: it plays
// the GUI role against the adapter, accepting coordinate moves on stdin
// and printing engine moves and analysis updates.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/quietpawn/quietpawn/internal/adapters/gameclock"
	"github.com/quietpawn/quietpawn/internal/adapters/oslauncher"
	"github.com/quietpawn/quietpawn/internal/adapters/realclock"
	"github.com/quietpawn/quietpawn/internal/adapters/sanmoves"
	"github.com/quietpawn/quietpawn/internal/config"
	"github.com/quietpawn/quietpawn/internal/engine"
	"github.com/quietpawn/quietpawn/internal/logging"
	"github.com/quietpawn/quietpawn/internal/session"
	"github.com/quietpawn/quietpawn/internal/uci"
)

// Version information - set at build time.
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
)

func main() {
	var (
		configPath  string
		enginePath  string
		modeName    string
		minutes     int
		showVersion bool
		debug       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&enginePath, "engine", "", "Engine binary (overrides config)")
	flag.StringVar(&modeName, "mode", "analysis", "Game mode: white, black or analysis (side the engine plays)")
	flag.IntVar(&minutes, "minutes", 5, "Time budget per side in minutes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging of the UCI exchange")
	flag.Parse()

	if showVersion {
		fmt.Printf("quietpawn-analyze version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	mode, err := parseMode(modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if enginePath != "" {
		cfg.Engine.Path = enginePath
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg, configPath, mode, time.Duration(minutes)*time.Minute); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, mode uci.Mode, budget time.Duration) error {
	clk := realclock.New()
	board := gameclock.New(clk, budget)
	console := &consoleNotifier{}

	eng := engine.New(oslauncher.New(), clk, engine.Options{
		Binary:       cfg.Engine.Path,
		Threads:      cfg.Engine.Threads,
		HashMB:       cfg.Engine.HashMB,
		Ponder:       cfg.Engine.Ponder,
		SkillLevel:   cfg.Engine.SkillLevel,
		ReadyTimeout: cfg.Engine.ReadyTimeout,
	})
	s := session.New(eng, board, console, session.WithMoveFormatter(sanmoves.New()))

	if err := eng.Start(s); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Warn("engine shutdown", slog.String("error", err.Error()))
		}
	}()

	fmt.Printf("engine: %s\n", eng.Identity().Name)

	// Re-apply engine options when the config file changes on disk.
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
			if err := eng.ApplyOptions(engine.Options{
				Threads:      newCfg.Engine.Threads,
				HashMB:       newCfg.Engine.HashMB,
				Ponder:       newCfg.Engine.Ponder,
				SkillLevel:   newCfg.Engine.SkillLevel,
				ReadyTimeout: newCfg.Engine.ReadyTimeout,
			}); err != nil {
				slog.Warn("re-applying engine options", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer watcher.Close()
	}

	s.StartNewGame(budget, mode)

	fmt.Println("enter moves in coordinate notation (e2e4), 'new' for a new game, 'quit' to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
		case "quit", "exit":
			return nil
		case "new":
			s.StartNewGame(budget, mode)
		default:
			s.SubmitUserMove(input)
			if !s.Healthy() {
				fmt.Println("warning: engine is not responding")
			}
		}
	}
	return scanner.Err()
}

func parseMode(name string) (uci.Mode, error) {
	switch strings.ToLower(name) {
	case "white":
		return uci.EngineWhite, nil
	case "black":
		return uci.EngineBlack, nil
	case "analysis":
		return uci.Analysis, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want white, black or analysis)", name)
	}
}

// consoleNotifier renders GUI notifications as terminal lines.
type consoleNotifier struct{}

func (consoleNotifier) MoveAccepted(move string, promotion uci.PieceKind) {
	if promotion != uci.PieceNone {
		fmt.Printf("engine plays %s (promotes to %c)\n", move, promotion)
		return
	}
	fmt.Printf("engine plays %s\n", move)
}

func (consoleNotifier) SetScore(score string) {
	fmt.Printf("score %s\n", score)
}

func (consoleNotifier) SetBestLine(line string) {
	fmt.Printf("line  %s\n", line)
}

func (consoleNotifier) SetNodesPerSecond(nps string) {
	fmt.Printf("speed %s\n", nps)
}
