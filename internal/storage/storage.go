// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"legisradar/internal/model"
)

// Counts summarizes how many records of each kind are stored.
type Counts struct {
	Bills  int64
	Events int64
	News   int64
}

// Storage is the interface for all persistence operations.
type Storage interface {
	// UpsertBill inserts or refreshes a bill keyed by its site code. The
	// boolean is true when the bill was not stored before.
	UpsertBill(ctx context.Context, bill *model.Bill) (bool, error)
	ListRecentBills(ctx context.Context, limit int) ([]model.Bill, error)

	// UpsertEvent inserts or refreshes an event keyed by its site code. The
	// boolean is true when the event was not stored before.
	UpsertEvent(ctx context.Context, event *model.Event) (bool, error)
	ListUpcomingEvents(ctx context.Context, from time.Time, limit int) ([]model.Event, error)

	// SaveNewsItem stores a news item once per GUID. The boolean is true
	// when the item was not stored before.
	SaveNewsItem(ctx context.Context, item *model.NewsItem) (bool, error)

	Counts(ctx context.Context) (Counts, error)

	Close() error
}
