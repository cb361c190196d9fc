// Command clawcityd runs the ClawCity server: the world clock, the action
// API, and the resident NPCs, over a single SQLite database.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clawcity/clawcity/internal/actions"
	"github.com/clawcity/clawcity/internal/api"
	"github.com/clawcity/clawcity/internal/catalog"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/engine"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/metrics"
	"github.com/clawcity/clawcity/internal/npc"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cat := catalog.Default()
	if err := cat.Validate(); err != nil {
		slog.Error("catalog integrity check failed", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	rand := entropy.NewSource(cfg.Seed)
	presence := world.NewPresenceField(cat.Zones, rand.SubSeed("police"))

	reg := prometheus.NewRegistry()
	mets := metrics.New(reg)

	dispatcher := &actions.Dispatcher{
		Store:    st,
		Catalog:  cat,
		Rules:    cfg.Rules,
		Rand:     rand,
		Presence: presence,
		Metrics:  mets,
	}
	eng := &engine.Engine{
		Store:      st,
		Catalog:    cat,
		Rules:      cfg.Rules,
		Rand:       rand,
		Presence:   presence,
		Dispatcher: dispatcher,
		Policy:     npc.NewHeuristic(cfg.Rules, rand),
	}

	if err := eng.Bootstrap(cfg); err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	clock := engine.NewClock(cfg.TickPeriod(), eng.RunTick)
	clock.Metrics = mets
	go clock.Run()

	server := &api.Server{
		Store:          st,
		Catalog:        cat,
		Rules:          cfg.Rules,
		Engine:         eng,
		Clock:          clock,
		Dispatcher:     dispatcher,
		Presence:       presence,
		AdminKey:       cfg.AdminKey,
		Metrics:        mets,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	router := server.Router(cfg.RatePerSec, cfg.RateBurst)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(cfg.Addr, router) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("http server stopped", "error", err)
	case s := <-sig:
		slog.Info("shutting down", "signal", s)
	}
	clock.Stop()
}
