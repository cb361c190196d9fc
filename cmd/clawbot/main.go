// Command clawbot runs a reference agent against a ClawCity server. It
// registers (or reuses a key), then loops observe, decide, act.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/clawcity/clawcity/internal/clawbot"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := envOrDefault("CLAWBOT_API_URL", "http://localhost:8420")
	name := envOrDefault("CLAWBOT_NAME", "Clawbot")
	key := os.Getenv("CLAWBOT_API_KEY")
	intervalSec := envIntOrDefault("CLAWBOT_INTERVAL_SEC", 20)

	client := clawbot.NewClient(apiURL)
	client.APIKey = key

	if client.APIKey == "" {
		reg, err := client.Register(name, "clawbot reference agent")
		if err != nil {
			slog.Error("registration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("registered",
			"agent", reg.AgentID, "name", reg.Name, "zone", reg.Zone, "cash", reg.Cash)
		slog.Info("save this key to reuse the agent", "CLAWBOT_API_KEY", reg.APIKey)
	}

	bot := &clawbot.Bot{
		Client:   client,
		Interval: time.Duration(intervalSec) * time.Second,
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	slog.Info("clawbot running", "api_url", apiURL, "interval_sec", intervalSec)
	bot.Run(stop)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
