package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"legisradar/internal/model"
)

var ignoreBillTS = cmpopts.IgnoreFields(model.Bill{}, "ID", "CreatedAt", "UpdatedAt")

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertBill(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	bill := model.Bill{
		SiteID:      "134910",
		Name:        "PLS 330",
		Summary:     "Dispõe sobre a proteção de dados pessoais.",
		RawKeywords: "PROTEÇÃO, DADOS PESSOAIS",
		Keywords:    "dados pessoais",
		PresentedAt: "2018-09-04",
		Location:    "Secretaria Legislativa do Senado Federal",
		Chamber:     "SE",
		Authors:     "Senador Antonio Carlos Valadares",
		AuthorIDs:   "823",
		URL:         "https://www25.senado.leg.br/web/atividade/materias/-/materia/134910",
	}

	created, err := s.UpsertBill(ctx, &bill)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !created {
		t.Error("expected first upsert to report a new bill")
	}

	// A later crawl of the same bill refreshes its fields in place.
	update := bill
	update.Keywords = "dados pessoais, privacidade"
	update.Location = "Plenário do Senado Federal"

	created, err = s.UpsertBill(ctx, &update)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if created {
		t.Error("expected second upsert to report an existing bill")
	}

	got, err := s.ListRecentBills(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 bill, got %d", len(got))
	}
	if diff := cmp.Diff(update, got[0], ignoreBillTS); diff != "" {
		t.Errorf("stored bill mismatch (-want +got):\n%s", diff)
	}
}

func TestListRecentBills(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for _, siteID := range []string{"101", "102", "103"} {
		bill := model.Bill{SiteID: siteID, Name: "PLS " + siteID, Chamber: "SE"}
		if _, err := s.UpsertBill(ctx, &bill); err != nil {
			t.Fatalf("upsert %s: %v", siteID, err)
		}
	}

	got, err := s.ListRecentBills(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var gotIDs []string
	for _, b := range got {
		gotIDs = append(gotIDs, b.SiteID)
	}
	want := []string{"103", "102"}
	if diff := cmp.Diff(want, gotIDs); diff != "" {
		t.Errorf("recent bills mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertEvent(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	event := model.Event{
		SiteID:      "8438",
		StartsAt:    time.Date(2019, 3, 12, 12, 0, 0, 0, time.UTC),
		Description: "**Finalidade**\nDiscutir o PLS 330",
		Location:    "Comissão de Assuntos Econômicos",
		Chamber:     "SE",
	}

	created, err := s.UpsertEvent(ctx, &event)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !created {
		t.Error("expected first upsert to report a new event")
	}

	// The meeting gets rescheduled.
	update := event
	update.StartsAt = time.Date(2019, 3, 14, 17, 0, 0, 0, time.UTC)

	created, err = s.UpsertEvent(ctx, &update)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if created {
		t.Error("expected second upsert to report an existing event")
	}

	got, err := s.ListUpcomingEvents(ctx, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if !got[0].StartsAt.Equal(update.StartsAt) {
		t.Errorf("StartsAt = %v, want %v", got[0].StartsAt, update.StartsAt)
	}
}

func TestListUpcomingEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	base := time.Date(2019, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		{SiteID: "1", StartsAt: base.AddDate(0, 0, -5), Description: "already held", Chamber: "SE"},
		{SiteID: "2", StartsAt: base.AddDate(0, 0, 20), Description: "later this month", Chamber: "SE"},
		{SiteID: "3", StartsAt: base.AddDate(0, 0, 1), Description: "tomorrow", Chamber: "SE"},
	}
	for i := range events {
		if _, err := s.UpsertEvent(ctx, &events[i]); err != nil {
			t.Fatalf("upsert event %d: %v", i, err)
		}
	}

	got, err := s.ListUpcomingEvents(ctx, base, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var gotIDs []string
	for _, e := range got {
		gotIDs = append(gotIDs, e.SiteID)
	}
	want := []string{"3", "2"}
	if diff := cmp.Diff(want, gotIDs); diff != "" {
		t.Errorf("upcoming events mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveNewsItem(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	published := time.Date(2019, 3, 5, 17, 30, 0, 0, time.UTC)
	item := model.NewsItem{
		GUID:        "https://www12.senado.leg.br/noticias/1",
		Title:       "CAE debate proteção de dados",
		Summary:     "A comissão discute o marco legal.",
		Link:        "https://www12.senado.leg.br/noticias/1",
		Keywords:    "dados pessoais",
		FeedName:    "Senado Notícias",
		PublishedAt: &published,
	}

	created, err := s.SaveNewsItem(ctx, &item)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !created {
		t.Error("expected first save to report a new item")
	}

	created, err = s.SaveNewsItem(ctx, &item)
	if err != nil {
		t.Fatalf("save duplicate: %v", err)
	}
	if created {
		t.Error("expected duplicate save to be ignored")
	}

	// Items without a publication date are stored as well.
	bare := model.NewsItem{GUID: "sha256:abc", Title: "Sem data"}
	created, err = s.SaveNewsItem(ctx, &bare)
	if err != nil {
		t.Fatalf("save bare: %v", err)
	}
	if !created {
		t.Error("expected bare item to be stored")
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for _, siteID := range []string{"101", "102"} {
		bill := model.Bill{SiteID: siteID, Name: "PLS " + siteID, Chamber: "SE"}
		if _, err := s.UpsertBill(ctx, &bill); err != nil {
			t.Fatalf("upsert bill: %v", err)
		}
	}
	event := model.Event{SiteID: "8438", StartsAt: time.Now().UTC(), Chamber: "SE"}
	if _, err := s.UpsertEvent(ctx, &event); err != nil {
		t.Fatalf("upsert event: %v", err)
	}
	item := model.NewsItem{GUID: "guid-1", Title: "Notícia"}
	if _, err := s.SaveNewsItem(ctx, &item); err != nil {
		t.Fatalf("save news: %v", err)
	}

	got, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := Counts{Bills: 2, Events: 1, News: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
}

// Ensure the Storage interface is satisfied.
var _ Storage = (*SQLite)(nil)
