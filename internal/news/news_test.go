package news

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"legisradar/internal/keyword"
	"legisradar/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(strings.NewReader(m.body)),
	}, nil
}

// stubTransport routes requests by full URL.
type stubTransport struct {
	responses map[string]string
	errs      map[string]error
}

func (m *stubTransport) Do(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(m.responses[url])),
	}, nil
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "news.xml"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheck(t *testing.T) {
	transport := &mockTransport{body: loadFixture(t), statusCode: http.StatusOK}
	feeds := []Feed{{Name: "Senado Notícias", URL: "https://www12.senado.leg.br/noticias/feed"}}
	w := New(transport, keyword.New([]string{"dados pessoais"}), feeds, discardLogger())

	var items []*model.NewsItem
	w.Check(context.Background(), func(item *model.NewsItem) { items = append(items, item) })

	if len(items) != 1 {
		t.Fatalf("Check() emitted %d items, want 1", len(items))
	}

	published := time.Date(2019, 3, 5, 14, 30, 0, 0, time.FixedZone("", -3*60*60))
	want := &model.NewsItem{
		GUID:        "https://www12.senado.leg.br/noticias/materias/2019/03/05/cae-debate-protecao-de-dados",
		Title:       "CAE debate proteção de dados pessoais na próxima semana",
		Summary:     "A Comissão de Assuntos Econômicos discute o marco de proteção de dados pessoais.",
		Link:        "https://www12.senado.leg.br/noticias/materias/2019/03/05/cae-debate-protecao-de-dados",
		Keywords:    "dados pessoais",
		FeedName:    "Senado Notícias",
		PublishedAt: &published,
	}
	if diff := cmp.Diff(want, items[0]); diff != "" {
		t.Errorf("Check() item mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckNoKeywordsKeepsAll(t *testing.T) {
	transport := &mockTransport{body: loadFixture(t), statusCode: http.StatusOK}
	feeds := []Feed{{Name: "Senado Notícias", URL: "https://www12.senado.leg.br/noticias/feed"}}
	w := New(transport, keyword.New(nil), feeds, discardLogger())

	var items []*model.NewsItem
	w.Check(context.Background(), func(item *model.NewsItem) { items = append(items, item) })

	if len(items) != 2 {
		t.Fatalf("Check() emitted %d items, want 2", len(items))
	}
	if items[0].Keywords != "" {
		t.Errorf("Keywords = %q, want empty", items[0].Keywords)
	}
	// The second fixture item carries no GUID, so one is derived.
	if !strings.HasPrefix(items[1].GUID, "sha256:") {
		t.Errorf("GUID = %q, want sha256 fallback", items[1].GUID)
	}
}

func TestCheckFailingFeedDoesNotBlockOthers(t *testing.T) {
	transport := &stubTransport{
		responses: map[string]string{"https://ok.test/feed": loadFixture(t)},
		errs:      map[string]error{"https://down.test/feed": errors.New("connection refused")},
	}
	feeds := []Feed{
		{Name: "down", URL: "https://down.test/feed"},
		{Name: "ok", URL: "https://ok.test/feed"},
	}
	w := New(transport, keyword.New([]string{"dados pessoais"}), feeds, discardLogger())

	var items []*model.NewsItem
	w.Check(context.Background(), func(item *model.NewsItem) { items = append(items, item) })

	if len(items) != 1 {
		t.Fatalf("Check() emitted %d items, want 1", len(items))
	}
	if items[0].FeedName != "ok" {
		t.Errorf("FeedName = %q, want %q", items[0].FeedName, "ok")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short text unchanged", in: "resumo curto", want: "resumo curto"},
		{name: "exact limit unchanged", in: strings.Repeat("a", maxSummary), want: strings.Repeat("a", maxSummary)},
		{
			name: "long accented text cut at rune boundary",
			in:   strings.Repeat("ã", maxSummary+1),
			want: strings.Repeat("ã", maxSummary) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, maxSummary); got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}
