package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"legisradar/internal/model"
	"legisradar/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// UpsertBill inserts the bill or refreshes an already stored one, keyed by
// its site code. The boolean is true when the bill is new.
func (s *SQLite) UpsertBill(ctx context.Context, bill *model.Bill) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bills WHERE site_id = ?`, bill.SiteID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check bill: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bills (site_id, name, summary, raw_keywords, keywords, presented_at,
		                    location, chamber, authors, author_ids, url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(site_id) DO UPDATE SET
		   name = excluded.name,
		   summary = excluded.summary,
		   raw_keywords = excluded.raw_keywords,
		   keywords = excluded.keywords,
		   presented_at = excluded.presented_at,
		   location = excluded.location,
		   authors = excluded.authors,
		   author_ids = excluded.author_ids,
		   url = excluded.url,
		   updated_at = excluded.updated_at`,
		bill.SiteID, bill.Name, bill.Summary, bill.RawKeywords, bill.Keywords, bill.PresentedAt,
		bill.Location, bill.Chamber, bill.Authors, bill.AuthorIDs, bill.URL, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("upsert bill: %w", err)
	}
	return count == 0, nil
}

// ListRecentBills returns the most recently stored bills, newest first.
func (s *SQLite) ListRecentBills(ctx context.Context, limit int) ([]model.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, site_id, name, summary, raw_keywords, keywords, presented_at,
		        location, chamber, authors, author_ids, url, created_at, updated_at
		 FROM bills ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// UpsertEvent inserts the event or refreshes an already stored one, keyed by
// its site code. The boolean is true when the event is new.
func (s *SQLite) UpsertEvent(ctx context.Context, event *model.Event) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE site_id = ?`, event.SiteID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (site_id, starts_at, description, location, chamber, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(site_id) DO UPDATE SET
		   starts_at = excluded.starts_at,
		   description = excluded.description,
		   location = excluded.location`,
		event.SiteID, event.StartsAt.UTC().Format(timeLayout), event.Description,
		event.Location, event.Chamber, now,
	)
	if err != nil {
		return false, fmt.Errorf("upsert event: %w", err)
	}
	return count == 0, nil
}

// ListUpcomingEvents returns events starting at or after from, soonest first.
func (s *SQLite) ListUpcomingEvents(ctx context.Context, from time.Time, limit int) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, site_id, starts_at, description, location, chamber, created_at
		 FROM events WHERE starts_at >= ? ORDER BY starts_at LIMIT ?`,
		from.UTC().Format(timeLayout), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveNewsItem stores a news item once per GUID. The boolean is true when
// the item was not stored before.
func (s *SQLite) SaveNewsItem(ctx context.Context, item *model.NewsItem) (bool, error) {
	var published *string
	if item.PublishedAt != nil {
		v := item.PublishedAt.UTC().Format(timeLayout)
		published = &v
	}

	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO news_items (guid, title, summary, link, keywords, feed_name, published_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.GUID, item.Title, item.Summary, item.Link, item.Keywords, item.FeedName, published, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert news item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Counts reports how many records of each kind are stored.
func (s *SQLite) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	queries := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM bills`, &c.Bills},
		{`SELECT COUNT(*) FROM events`, &c.Events},
		{`SELECT COUNT(*) FROM news_items`, &c.News},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("count records: %w", err)
		}
	}
	return c, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBill(row scannable) (model.Bill, error) {
	var b model.Bill
	var created, updated string
	err := row.Scan(&b.ID, &b.SiteID, &b.Name, &b.Summary, &b.RawKeywords, &b.Keywords,
		&b.PresentedAt, &b.Location, &b.Chamber, &b.Authors, &b.AuthorIDs, &b.URL, &created, &updated)
	if err != nil {
		return b, fmt.Errorf("scan bill: %w", err)
	}
	b.CreatedAt, _ = time.Parse(timeLayout, created)
	b.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return b, nil
}

func scanEvent(row scannable) (model.Event, error) {
	var e model.Event
	var starts, created string
	err := row.Scan(&e.ID, &e.SiteID, &starts, &e.Description, &e.Location, &e.Chamber, &created)
	if err != nil {
		return e, fmt.Errorf("scan event: %w", err)
	}
	e.StartsAt, _ = time.Parse(timeLayout, starts)
	e.CreatedAt, _ = time.Parse(timeLayout, created)
	return e, nil
}
