package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/trapline/sim/internal/config"
	"github.com/trapline/sim/internal/core/ecs"
	"github.com/trapline/sim/internal/core/event"
	coresys "github.com/trapline/sim/internal/core/system"
	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/enemy"
	"github.com/trapline/sim/internal/level"
	"github.com/trapline/sim/internal/player"
	"github.com/trapline/sim/internal/scripting"
	"github.com/trapline/sim/internal/system"
	"github.com/trapline/sim/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(levelID string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              trapline  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       headless tower-defense simulation   \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mlevel:\033[0m %s\n\n", levelID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	val := fmt.Sprint(value)
	dotsLen := 42 - len(label) - len(val)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), val)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Simulation ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/trapline.toml"
	if p := os.Getenv("TRAPLINE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Sim.Level)

	// 3. Load authored data
	printSection("data")
	catalog, err := data.LoadCatalog(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	printStat("enemy templates", catalog.Enemies.Count())
	printStat("trap templates", catalog.Traps.Count())
	printStat("waves", catalog.Waves.Count())
	printStat("levels", catalog.Levels.Count())

	lvl := catalog.Levels.Get(cfg.Sim.Level)
	if lvl == nil {
		return fmt.Errorf("level %q not found in %s", cfg.Sim.Level, filepath.Join(cfg.Data.Dir, "level_list.yaml"))
	}

	// 4. Lua damage hook
	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK(fmt.Sprintf("%d lua scripts loaded", len(luaEngine.Files())))

	formula, err := player.CompileFormula(cfg.Rewards.ExperienceFormula)
	if err != nil {
		return fmt.Errorf("rewards: %w", err)
	}
	printOK("experience formula compiled")
	fmt.Println()

	// 5. World, player and scheduler
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	bus := event.NewBus()
	ecsWorld := ecs.NewWorld()
	worldState, err := world.NewState(world.Deps{
		ECS:      ecsWorld,
		Level:    lvl,
		Catalog:  catalog,
		Bus:      bus,
		Resolver: luaEngine,
		Pool:     cfg.Pool,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	defer worldState.Destroy()

	pl := player.New(cfg.Player.Level, cfg.Player.Experience, formula, bus, log)
	// Every reset pays the starting gold and lays the authored traps again.
	placed := 0
	sched, err := level.New(lvl, level.Deps{
		Spawner: worldState,
		Wallet:  pl,
		Actors:  worldState,
		Bus:     bus,
		Rand:    rand.New(rand.NewSource(seed)),
		Log:     log,
		OnReset: func() { placed = worldState.PlaceInitial(pl) },
	})
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	event.Subscribe(bus, sched.OnEnemyDied)
	subscribeReports(bus, log)

	printSection("level")
	printStat("waves", sched.TotalWaves())
	printStat("start energy", lvl.StartEnergy)
	printStat("start gold", lvl.StartGold)
	printStat("traps placed", placed)
	printStat("gold left", pl.Gold())
	printStat("seed", seed)
	fmt.Println()

	// 6. Systems in tick order
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewLevelSystem(sched))
	runner.Register(system.NewEnemySystem(worldState))
	runner.Register(system.NewTrapSystem(worldState))
	runner.Register(system.NewMovementSystem(worldState))
	runner.Register(system.NewTriggerSystem(worldState))
	runner.Register(system.NewPoolExpandSystem(worldState, log))
	runner.Register(system.NewCleanupSystem(ecsWorld, log))

	// 7. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	printSection("running")
	mode := "fast-forward"
	if cfg.Sim.Realtime {
		mode = "realtime"
	}
	printReady(fmt.Sprintf("%d systems, tick %s, %s, limit %s", runner.Len(), cfg.Sim.TickRate, mode, cfg.Sim.MaxDuration))
	fmt.Println()

	sched.Play()
	stopped := loop(runner, sched, cfg.Sim, shutdownCh, log)

	// Deliver the notifications raised by the last tick.
	runner.TickPhase(coresys.PhasePreUpdate, 0)

	printSummary(sched, pl, runner, stopped)
	return nil
}

// loop ticks until the level ends, the time limit passes or a signal
// arrives. Returns the signal, if any.
func loop(runner *coresys.Runner, sched *level.Scheduler, cfg config.SimConfig, shutdownCh <-chan os.Signal, log *zap.Logger) os.Signal {
	if !cfg.Realtime {
		for sched.Ongoing() && runner.Elapsed() < cfg.MaxDuration {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				return sig
			default:
			}
			runner.Tick(cfg.TickRate)
		}
		return nil
	}

	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()
	for sched.Ongoing() && runner.Elapsed() < cfg.MaxDuration {
		select {
		case <-ticker.C:
			runner.Tick(cfg.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return sig
		}
	}
	return nil
}

// subscribeReports logs the notifications a UI would show.
func subscribeReports(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.WaveStarted) {
		log.Info("wave incoming",
			zap.Int("wave", ev.Ordinal),
			zap.Int("of", ev.Total),
			zap.Bool("final", ev.Final),
			zap.Float64("countdown", ev.Countdown),
		)
	})
	event.Subscribe(bus, func(ev event.EnergyChanged) {
		log.Debug("energy", zap.Int("current", ev.Current), zap.Int("start", ev.Start))
	})
	event.Subscribe(bus, func(ev event.PlayerLeveledUp) {
		log.Info("level up", zap.Int("level", ev.Level))
	})
	event.Subscribe(bus, func(ev enemy.Died) {
		log.Debug("enemy died",
			zap.String("enemy", ev.Enemy.Template.ID),
			zap.Bool("finished", ev.HasFinishedLevel),
		)
	})
}

func printSummary(sched *level.Scheduler, pl *player.Player, runner *coresys.Runner, stopped os.Signal) {
	fmt.Println()
	printSection("summary")
	outcome := sched.Outcome().String()
	if stopped != nil {
		outcome = "interrupted"
	} else if sched.Ongoing() {
		outcome = "time limit"
	}
	printStat("outcome", outcome)
	printStat("run", sched.RunID())
	printStat("waves reached", fmt.Sprintf("%d/%d", sched.WaveOrdinal(), sched.TotalWaves()))
	printStat("enemies spawned", sched.Spawned())
	printStat("energy", sched.Energy())
	printStat("gold", pl.Gold())
	printStat("player level", pl.Level())
	printStat("experience", pl.Experience())
	printStat("ticks", runner.Ticks())
	printStat("simulated", runner.Elapsed())
	fmt.Println()
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
