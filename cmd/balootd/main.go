// Command balootd runs the authoritative Baloot session server: the Socket
// Layer, ActionHandler pipeline, Redis-backed RoomManager, and BotScheduler
// wired together behind a single HTTP listener.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lox/pokerforbots/internal/action"
	"github.com/lox/pokerforbots/internal/auth"
	"github.com/lox/pokerforbots/internal/botdecide"
	"github.com/lox/pokerforbots/internal/botsched"
	"github.com/lox/pokerforbots/internal/config"
	"github.com/lox/pokerforbots/internal/socket"

	"github.com/lox/pokerforbots/internal/room"
)

// Process exit codes, distinguishing config errors from a down Redis from
// a failed listener bind.
const (
	exitOK               = 0
	exitConfigError      = 1
	exitRedisUnreachable = 2
	exitBindFailure      = 3
)

// roomSweepInterval is how often the RoomManager archives and evicts
// finished rooms in the background.
const roomSweepInterval = 5 * time.Minute

type CLI struct {
	Addr          string `kong:"help='Override ADDR env var'"`
	RedisHost     string `kong:"help='Override REDIS_HOST env var'"`
	RedisPort     int    `kong:"help='Override REDIS_PORT env var'"`
	Offline       bool   `kong:"help='Run in OFFLINE_MODE (disables token validation)'"`
	Debug         bool   `kong:"help='Enable debug logging and fast-forward bot-turn delays'"`
	Seed          int64  `kong:"help='Deterministic RNG seed for room shuffles (0 = time-based)'"`
	RoomTemplates string `kong:"name='room-templates',help='Path to an optional HCL room-template file'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("balootd"),
		kong.Description("Authoritative multiplayer Baloot session server"),
		kong.UsageOnError(),
	)

	cliLog := charmlog.New(os.Stderr)
	if cli.Debug {
		cliLog.SetLevel(charmlog.DebugLevel)
	}

	if cli.Offline {
		os.Setenv(config.EnvOfflineMode, "true")
	}
	cfg, err := config.FromEnv()
	if err != nil {
		cliLog.Error("configuration error", "err", err)
		kctx.Exit(exitConfigError)
		return
	}
	if cli.Addr != "" {
		cfg.Addr = cli.Addr
	}
	if cli.RedisHost != "" {
		cfg.RedisHost = cli.RedisHost
	}
	if cli.RedisPort != 0 {
		cfg.RedisPort = cli.RedisPort
	}

	var templates []config.RoomTemplate
	if cli.RoomTemplates != "" {
		templates, err = config.LoadRoomTemplates(cli.RoomTemplates)
		if err != nil {
			cliLog.Error("failed to load room templates", "err", err)
			kctx.Exit(exitConfigError)
			return
		}
	}
	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pingErr := rdb.Ping(pingCtx).Err()
	cancel()
	if pingErr != nil {
		cliLog.Error("redis unreachable", "addr", cfg.RedisAddr(), "err", pingErr)
		kctx.Exit(exitRedisUnreachable)
		return
	}

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	newRNG := func() *rand.Rand { return rand.New(rand.NewSource(seed)) }

	rooms := room.NewManager(rdb, logger, newRNG)
	limiter := action.NewMemoryRateLimiter(20, time.Second)

	var validator socket.Validator
	if cfg.OfflineMode {
		validator = auth.NewSocketAdapter(auth.NewNoopValidator())
	} else {
		validator = auth.NewSocketAdapter(auth.NewJWTValidator(cfg.JWTSecret))
	}

	socketServer := socket.NewServer(rooms, nil, validator, logger, templates)
	handler := action.NewHandler(rooms, limiter, socketServer, logger)
	socketServer.SetHandler(handler)

	decider := botdecide.NewRandomDecider(rand.New(rand.NewSource(seed)))
	botsched.New(rooms, handler, quartz.NewReal(), decider, logger, cli.Debug)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runRoomSweep(sweepCtx, rooms, logger)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		cliLog.Error("failed to bind address", "addr", cfg.Addr, "err", err)
		kctx.Exit(exitBindFailure)
		return
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- socketServer.Serve(listener)
	}()
	cliLog.Info("balootd starting", "addr", cfg.Addr, "offline_mode", cfg.OfflineMode)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("server exited with error")
			kctx.Exit(exitBindFailure)
			return
		}
	case sig := <-sigCh:
		cliLog.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := socketServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
		<-serveErr
	}

	fmt.Fprintln(os.Stderr, "balootd shutdown complete")
	kctx.Exit(exitOK)
}

// runRoomSweep periodically archives and evicts finished rooms until ctx
// is cancelled at shutdown.
func runRoomSweep(ctx context.Context, rooms *room.Manager, logger zerolog.Logger) {
	ticker := time.NewTicker(roomSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := rooms.Sweep(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("room sweep failed")
				continue
			}
			if swept > 0 {
				logger.Info().Int("count", swept).Msg("room sweep archived and evicted finished rooms")
			}
		}
	}
}
