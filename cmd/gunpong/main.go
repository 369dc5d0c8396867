package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gunpong/server/internal/config"
	"github.com/gunpong/server/internal/core/event"
	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/data"
	"github.com/gunpong/server/internal/handler"
	gonet "github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/persist"
	"github.com/gunpong/server/internal/scripting"
	"github.com/gunpong/server/internal/system"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            GUNPONG  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      槍彈乒乓 · 60Hz 對戰伺服器           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	// Use rune count for CJK width calculation (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	displayWidth := 0
	for _, r := range label {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	dotsLen := 42 - displayWidth - len(numStr)
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

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config. Without a file the built-in defaults are enough for
	// a dev server pointed at a local database.
	cfgPath := os.Getenv("GUNPONG_CONFIG")
	if cfgPath == "" {
		if _, err := os.Stat("config/server.toml"); err == nil {
			cfgPath = "config/server.toml"
		}
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

	printBanner(cfg.Server.Name)

	// 3. Connect to PostgreSQL and run migrations
	printSection("資料庫")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")

	// 4. Repositories
	accountRepo := persist.NewAccountRepo(db)
	matchRepo := persist.NewMatchRepo(db)
	settingsRepo := persist.NewSettingsRepo(db)

	// 5. Token signing secret, persisted so rejoin tokens survive restarts.
	secret, err := settingsRepo.Get(ctx, "jwt_secret")
	if err != nil {
		return fmt.Errorf("load jwt secret: %w", err)
	}
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		if err := settingsRepo.Set(ctx, "jwt_secret", secret); err != nil {
			return fmt.Errorf("store jwt secret: %w", err)
		}
	}
	tokens, err := gonet.NewTokenIssuer(secret, cfg.Server.TokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	printOK("憑證簽發器就緒")
	fmt.Println()

	// 6. Data tables
	printSection("資料載入")

	effects, err := data.LoadEffects(cfg.Data.EffectsPath)
	if err != nil {
		return fmt.Errorf("load effects: %w", err)
	}
	printOK("特效參數載入完成")

	bots, err := data.LoadBotTable(cfg.Data.BotsPath)
	if err != nil {
		return fmt.Errorf("load bot roster: %w", err)
	}
	printStat("機器人名冊", bots.Count())

	// 6a. Lua scripting engine for bot personalities
	var luaEngine *scripting.Engine
	if cfg.Scripting.Enabled {
		luaEngine, err = scripting.NewEngine(cfg.Scripting.ScriptDir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		luaEngine.SetRoster(bots)
		printStat("腳本人格", len(luaEngine.Personalities()))
	}
	fmt.Println()

	// 7. World state, event bus, message registry
	worldState := world.NewState()
	bus := event.NewBus()

	event.Subscribe(bus, func(_ event.AccountLoggedIn) {
		log.Info(fmt.Sprintf("目前線上 %d 人", worldState.PlayerCount()))
	})

	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Accounts:  accountRepo,
		Config:    cfg,
		Log:       log,
		World:     worldState,
		Tokens:    tokens,
		Scripting: luaEngine,
		Bots:      bots,
		Effects:   effects,
		Bus:       bus,
		LoginRate: handler.NewLoginLimiter(),
	}
	handler.RegisterAll(pktReg, deps)

	// 8. Network server and result writer
	netServer, err := gonet.NewServer(
		cfg.Server.BindAddress,
		cfg.Game.InQueueSize,
		cfg.Game.OutQueueSize,
		cfg.Game.MsgsPerSecond,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.Serve()

	resultWriter := persist.NewResultWriter(matchRepo, cfg.Game.ResultQueueSize, log)

	// 9. Systems, in phase order. EventDispatchSystem must come before
	// InputSystem: both run in PhaseInput and the runner keeps
	// registration order within a phase.
	var simTick uint64
	simNow := func() float64 {
		return float64(simTick) * cfg.Game.TickRate.Seconds()
	}

	persistTicks := int(cfg.Game.PersistInterval / cfg.Game.TickRate)
	if persistTicks < 1 {
		persistTicks = 1
	}

	store := gonet.NewSessionStore()
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewInputSystem(netServer, pktReg, store, cfg.Game.MsgsPerTick, worldState, accountRepo, bus, log))
	runner.Register(system.NewLobbySystem(deps, log))
	runner.Register(system.NewMatchTickSystem(worldState, simNow))
	runner.Register(system.NewMatchTeardownSystem(worldState, resultWriter, bus, log))
	runner.Register(system.NewBroadcastSystem(worldState, store, bus, cfg.Game.ParticleBudget, simNow, log))
	persistSys := system.NewPersistenceSystem(worldState, accountRepo, persistTicks, log)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(worldState, simNow))

	// 10. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Game.TickRate))
	printReady(fmt.Sprintf("啟動於 %s", time.Unix(cfg.Server.StartTime, 0).Format("2006-01-02 15:04:05")))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			simTick++
			runner.Tick(cfg.Game.TickRate)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			// Deliver the last tick's events and settle any match that
			// finished in it, then flush ratings and drain the result
			// queue. Matches still in progress are voided.
			runner.TickPhase(coresys.PhaseInput, cfg.Game.TickRate)
			runner.TickPhase(coresys.PhasePostUpdate, cfg.Game.TickRate)
			persistSys.SaveAllPlayers()
			resultWriter.Close()
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			netServer.Shutdown(shutCtx)
			shutCancel()
			log.Info("伺服器已停止")
			return nil
		}
	}
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
