package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/megalosandros/game-server/internal/app"
	"github.com/megalosandros/game-server/internal/config"
	"github.com/megalosandros/game-server/internal/handler"
	"github.com/megalosandros/game-server/internal/persist"
	"github.com/megalosandros/game-server/internal/ticker"
)

func main() {
	cmd := &cli.Command{
		Name:  "gameserver",
		Usage: "multiplayer lost-and-found game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config-file",
				Usage:    "path to the game config JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "www-root",
				Usage:    "directory with the static frontend files",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "tick-period",
				Usage: "game tick period in milliseconds; 0 exposes the external tick endpoint instead",
			},
			&cli.BoolFlag{
				Name:  "randomize-spawn-points",
				Usage: "spawn dogs at random road points instead of the first road start",
			},
			&cli.StringFlag{
				Name:  "state-file",
				Usage: "path to the game state snapshot; restored on start, saved on shutdown",
			},
			&cli.IntFlag{
				Name:  "save-state-period",
				Usage: "autosave period in milliseconds of game time; 0 saves only on shutdown",
			},
			&cli.StringFlag{
				Name:  "server-config",
				Usage: "path to the server TOML config; defaults apply when omitted",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, options{
				configFile:      cmd.String("config-file"),
				wwwRoot:         cmd.String("www-root"),
				tickPeriod:      time.Duration(cmd.Int("tick-period")) * time.Millisecond,
				randomizeSpawns: cmd.Bool("randomize-spawn-points"),
				stateFile:       cmd.String("state-file"),
				savePeriod:      time.Duration(cmd.Int("save-state-period")) * time.Millisecond,
				serverConfig:    cmd.String("server-config"),
			})
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configFile      string
	wwwRoot         string
	tickPeriod      time.Duration
	randomizeSpawns bool
	stateFile       string
	savePeriod      time.Duration
	serverConfig    string
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.serverConfig)
	if err != nil {
		return fmt.Errorf("load server config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	game, err := config.LoadGame(opts.configFile)
	if err != nil {
		return fmt.Errorf("load game config: %w", err)
	}

	dsn := os.Getenv("GAME_DB_URL")
	if dsn == "" {
		return errors.New("GAME_DB_URL is not set")
	}

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := persist.NewDB(dbCtx, dsn, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(dbCtx, db.Pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	records := persist.NewRecordRepo(db)
	application := app.New(game, records, opts.randomizeSpawns, log)

	if opts.stateFile != "" {
		if err := persist.LoadState(opts.stateFile, game, application); err != nil {
			return fmt.Errorf("restore game state: %w", err)
		}
		if opts.savePeriod > 0 {
			application.AddListener(persist.NewSnapshotListener(
				opts.stateFile, opts.savePeriod, game, application, log))
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	internalClock := opts.tickPeriod > 0
	tickerDone := make(chan struct{})
	if internalClock {
		go func() {
			defer close(tickerDone)
			ticker.New(opts.tickPeriod, application.Tick).Run(ctx)
		}()
	} else {
		close(tickerDone)
	}

	server := &http.Server{
		Addr:        cfg.Server.BindAddress,
		Handler:     handler.New(application, opts.wwwRoot, !internalClock, log),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.String("address", cfg.Server.BindAddress),
			zap.Bool("internal_clock", internalClock),
		)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown http server", zap.Error(err))
	}

	// The ticker must be fully stopped before the final save reads the
	// game state without the lock held by a live tick.
	<-tickerDone

	if opts.stateFile != "" {
		if err := persist.SaveState(opts.stateFile, game, application); err != nil {
			return fmt.Errorf("save game state: %w", err)
		}
	}

	log.Info("server stopped")
	return nil
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
