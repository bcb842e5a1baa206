package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"legisradar/internal/bot"
	"legisradar/internal/config"
	"legisradar/internal/keyword"
	"legisradar/internal/news"
	"legisradar/internal/scheduler"
	"legisradar/internal/senado"
	"legisradar/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	httpClient := &http.Client{Timeout: 60 * time.Second}
	client := senado.NewClient(httpClient)
	matcher := keyword.New(cfg.Keywords)

	bills := senado.NewBillSpider(client, matcher, cfg.Subjects, cfg.StartDate, log)
	agenda := senado.NewAgendaSpider(client, cfg.Subjects, cfg.Location(), log)

	var watcher *news.Watcher
	if len(cfg.NewsFeeds) > 0 {
		feeds := make([]news.Feed, len(cfg.NewsFeeds))
		for i, f := range cfg.NewsFeeds {
			feeds[i] = news.Feed{Name: f.Name, URL: f.URL}
		}
		watcher = news.New(httpClient, matcher, feeds, log)
	}

	var b *bot.Bot
	var sender scheduler.Sender
	if cfg.TelegramBotToken != "" {
		b, err = bot.New(cfg.TelegramBotToken, store, cfg, log)
		if err != nil {
			log.Error("create bot", "error", err)
			os.Exit(1)
		}
		sender = b
	}

	sched := scheduler.New(store, bills, agenda, watcher, sender, cfg.TelegramChatID, log)
	sched.SetIntervals(cfg.CrawlInterval(), cfg.NewsInterval())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting radar", "subjects", strings.Join(cfg.Subjects, ","), "keywords", len(cfg.Keywords))

	if b != nil {
		go sched.Run(ctx)
		b.Run(ctx)
	} else {
		sched.Run(ctx)
	}

	log.Info("radar stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
