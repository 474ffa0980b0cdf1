package main

import (
	"log/slog"
	"os"

	"github.com/AbhishekS200607/easyfin/internal/api"
	"github.com/AbhishekS200607/easyfin/internal/bot"
	"github.com/AbhishekS200607/easyfin/internal/config"
	"github.com/AbhishekS200607/easyfin/internal/service"
	"github.com/AbhishekS200607/easyfin/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	settings, err := store.Open(cfg.StateDBPath)
	if err != nil {
		slog.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer settings.Close()

	tracker := service.NewTracker(api.NewClient(cfg.APIBaseURL), settings)

	b, err := bot.NewBot(cfg.TelegramToken, tracker)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	slog.Info("starting bot", "api", cfg.APIBaseURL, "reminder_interval", cfg.ReminderInterval)
	if err := b.Start(cfg.ReminderInterval); err != nil {
		slog.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
