package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/game"
	"github.com/pthm-cable/predprey/present"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files written on bookmarks")
	serve := flag.String("serve", "", "Serve viewers over websocket on this address, e.g. :8080")
	tickRate := flag.Float64("tick-rate", 0, "Ticks per second (0 = as fast as possible)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, *seed, *maxTicks, *logStats, *outputDir, *snapshotDir, *serve, *tickRate); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, maxTicks int, logStats bool, outputDir, snapshotDir, serve string, tickRate float64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g, err := game.New(cfg, game.Options{
		Seed:        seed,
		RunID:       uuid.NewV4().String(),
		LogStats:    logStats,
		OutputDir:   outputDir,
		SnapshotDir: snapshotDir,
	})
	if err != nil {
		return err
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var onTick func(*game.Game)
	if serve != "" {
		srv := present.NewServer(cfg.World, g)
		go srv.Run(ctx)

		httpSrv := &http.Server{Addr: serve, Handler: srv.Handler()}
		go func() {
			slog.Info("serving viewers", "addr", serve)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("viewer server failed", "error", err)
				stop()
			}
		}()
		defer httpSrv.Close()

		every := max(cfg.Present.BroadcastEvery, 1)
		onTick = func(g *game.Game) {
			if int(g.Tick())%every == 0 {
				srv.Broadcast(g.Snapshot())
			}
		}
	}

	var interval time.Duration
	if tickRate > 0 {
		interval = time.Duration(float64(time.Second) / tickRate)
	}

	slog.Info("starting simulation",
		"run_id", g.RunID(),
		"seed", seed,
		"max_ticks", maxTicks,
		"tick_rate", tickRate,
	)

	err = g.Run(ctx, maxTicks, interval, onTick)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "tick", g.Tick())
		return nil
	}
	return err
}
