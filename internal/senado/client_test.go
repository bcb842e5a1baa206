package senado

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

// stubTransport routes requests by full URL and records the order in which
// they arrive.
type stubTransport struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (m *stubTransport) Do(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	body, ok := m.responses[url]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchXML(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		err        error
		wantErr    bool
	}{
		{
			name:       "valid document",
			body:       `<Doc><Valor> 42 </Valor></Doc>`,
			statusCode: http.StatusOK,
		},
		{
			name:       "malformed document",
			body:       `<Doc><Valor>42</Doc>`,
			statusCode: http.StatusOK,
			wantErr:    true,
		},
		{
			name:       "http error status",
			body:       "service unavailable",
			statusCode: http.StatusServiceUnavailable,
			wantErr:    true,
		},
		{
			name:    "transport error",
			err:     errors.New("connection refused"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(&mockTransport{body: tt.body, statusCode: tt.statusCode, err: tt.err})

			doc, err := client.FetchXML(context.Background(), "http://legis.senado.leg.br/dadosabertos/materia/1")
			if tt.wantErr {
				if err == nil {
					t.Fatal("FetchXML() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchXML() error = %v", err)
			}
			if got := findText(doc, "//Valor"); got != "42" {
				t.Errorf("findText() = %q, want %q", got, "42")
			}
		})
	}
}

func TestURLBuilders(t *testing.T) {
	client := NewClient(nil)
	start := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, 4, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "list",
			got:  client.ListURL("PLS", 2019),
			want: "http://legis.senado.leg.br/dadosabertos/materia/tramitando?sigla=PLS&ano=2019",
		},
		{
			name: "detail",
			got:  client.DetailURL("134910"),
			want: "http://legis.senado.leg.br/dadosabertos/materia/134910",
		},
		{
			name: "authorship",
			got:  client.AuthorshipURL("134910"),
			want: "http://legis.senado.leg.br/dadosabertos/materia/autoria/134910",
		},
		{
			name: "texts",
			got:  client.TextsURL("134910"),
			want: "http://legis.senado.leg.br/dadosabertos/materia/textos/134910",
		},
		{
			name: "bill page",
			got:  client.BillPageURL("134910"),
			want: "https://www25.senado.leg.br/web/atividade/materias/-/materia/134910",
		},
		{
			name: "agenda",
			got:  client.AgendaURL(start, end),
			want: "http://legis.senado.leg.br/dadosabertos/agenda/20190301/20190430/detalhe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("URL = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
