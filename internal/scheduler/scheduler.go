// Package scheduler drives the periodic crawl and news cycles and turns
// newly stored records into Telegram notifications.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"legisradar/internal/bot"
	"legisradar/internal/model"
	"legisradar/internal/news"
	"legisradar/internal/senado"
	"legisradar/internal/storage"
)

// Sender is the interface for sending Telegram messages.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Scheduler periodically crawls the Senado site, checks the news feeds, and
// notifies the configured chat about records stored for the first time.
type Scheduler struct {
	store  storage.Storage
	bills  *senado.BillSpider
	agenda *senado.AgendaSpider
	news   *news.Watcher
	sender Sender
	chatID int64
	log    *slog.Logger

	crawlTick time.Duration
	newsTick  time.Duration
}

// New creates a Scheduler. watcher may be nil when no news feeds are
// configured, and sender may be nil to collect records without notifying.
func New(store storage.Storage, bills *senado.BillSpider, agenda *senado.AgendaSpider, watcher *news.Watcher, sender Sender, chatID int64, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:     store,
		bills:     bills,
		agenda:    agenda,
		news:      watcher,
		sender:    sender,
		chatID:    chatID,
		log:       log,
		crawlTick: 6 * time.Hour,
		newsTick:  30 * time.Minute,
	}
}

// SetIntervals overrides the default crawl and news check intervals.
func (s *Scheduler) SetIntervals(crawl, news time.Duration) {
	s.crawlTick = crawl
	s.newsTick = news
}

// Run performs one crawl and one news check immediately, then repeats each
// on its own ticker, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.runCrawl(ctx)
	s.runNews(ctx)

	crawlTicker := time.NewTicker(s.crawlTick)
	defer crawlTicker.Stop()
	newsTicker := time.NewTicker(s.newsTick)
	defer newsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-crawlTicker.C:
			s.runCrawl(ctx)
		case <-newsTicker.C:
			s.runNews(ctx)
		}
	}
}

func (s *Scheduler) runCrawl(ctx context.Context) {
	stored := 0
	s.bills.Crawl(ctx, func(bill *model.Bill) {
		created, err := s.store.UpsertBill(ctx, bill)
		if err != nil {
			s.log.Error("store bill", "site_id", bill.SiteID, "error", err)
			return
		}
		if !created {
			return
		}
		stored++
		s.notify(bot.FormatBillNotification(bill))
	})
	if stored > 0 {
		s.log.Info("new bills stored", "count", stored)
	}

	s.agenda.Crawl(ctx, func(event *model.Event) {
		if _, err := s.store.UpsertEvent(ctx, event); err != nil {
			s.log.Error("store event", "site_id", event.SiteID, "error", err)
		}
	})
}

func (s *Scheduler) runNews(ctx context.Context) {
	if s.news == nil {
		return
	}
	s.news.Check(ctx, func(item *model.NewsItem) {
		created, err := s.store.SaveNewsItem(ctx, item)
		if err != nil {
			s.log.Error("store news item", "guid", item.GUID, "error", err)
			return
		}
		if !created {
			return
		}
		s.notify(bot.FormatNewsNotification(item))
	})
}

func (s *Scheduler) notify(text string) {
	if s.sender == nil || s.chatID == 0 {
		return
	}
	s.sender.SendMessage(s.chatID, text)

	// Rate limit: ~20 messages/sec max for Telegram
	time.Sleep(50 * time.Millisecond)
}
