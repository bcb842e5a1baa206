// Package model defines the domain types used across the application.
package model

import "time"

// ChamberSenado tags records originating from the Senado Federal.
const ChamberSenado = "SE"

// Bill represents one piece of legislation enriched by the bill pipeline.
type Bill struct {
	ID          int64
	SiteID      string // code assigned by the Senado site
	Name        string // e.g. "PLS 123"
	Summary     string // ementa
	RawKeywords string // IndexacaoMateria as published
	Keywords    string // matched keywords, comma-joined in discovery order
	PresentedAt string // DataApresentacao as published (YYYY-MM-DD)
	Location    string
	Chamber     string
	Authors     string // comma-joined author names
	AuthorIDs   string // comma-joined parliamentarian codes
	URL         string // human-facing bill page
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event represents one agenda item classified as bill-related.
type Event struct {
	ID          int64
	SiteID      string
	StartsAt    time.Time
	Description string
	Location    string
	Chamber     string
	CreatedAt   time.Time
}

// NewsItem represents one news-feed entry that passed keyword filtering.
type NewsItem struct {
	ID          int64
	GUID        string
	Title       string
	Summary     string
	Link        string
	Keywords    string // matched keywords, comma-joined
	FeedName    string
	PublishedAt *time.Time
	CreatedAt   time.Time
}
