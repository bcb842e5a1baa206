// Package senado crawls the Senado Federal open-data API for tracked bills
// and agenda meetings.
package senado

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
)

const (
	defaultBaseURL     = "http://legis.senado.leg.br/dadosabertos"
	defaultBillPageURL = "https://www25.senado.leg.br/web/atividade/materias/-/materia"

	userAgent   = "LegisRadar/1.0"
	maxBodySize = 32 * 1024 * 1024
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs lookups against the Senado open-data API.
type Client struct {
	client      HTTPClient
	baseURL     string
	billPageURL string
}

// NewClient creates a Client backed by the given HTTP client.
func NewClient(client HTTPClient) *Client {
	return &Client{
		client:      client,
		baseURL:     defaultBaseURL,
		billPageURL: defaultBillPageURL,
	}
}

// ListURL returns the lookup URL for all bills of one subject code still in
// progress in the given year.
func (c *Client) ListURL(subject string, year int) string {
	return fmt.Sprintf("%s/materia/tramitando?sigla=%s&ano=%d", c.baseURL, url.QueryEscape(subject), year)
}

// DetailURL returns the lookup URL for one bill's core fields.
func (c *Client) DetailURL(code string) string {
	return fmt.Sprintf("%s/materia/%s", c.baseURL, code)
}

// AuthorshipURL returns the lookup URL for one bill's authors.
func (c *Client) AuthorshipURL(code string) string {
	return fmt.Sprintf("%s/materia/autoria/%s", c.baseURL, code)
}

// TextsURL returns the lookup URL for one bill's attached-document manifest.
func (c *Client) TextsURL(code string) string {
	return fmt.Sprintf("%s/materia/textos/%s", c.baseURL, code)
}

// BillPageURL returns the human-facing page for one bill.
func (c *Client) BillPageURL(code string) string {
	return fmt.Sprintf("%s/%s", c.billPageURL, code)
}

// AgendaURL returns the lookup URL for the agenda between two dates.
func (c *Client) AgendaURL(start, end time.Time) string {
	return fmt.Sprintf("%s/agenda/%s/%s/detalhe", c.baseURL, start.Format("20060102"), end.Format("20060102"))
}

// FetchXML downloads rawURL and parses the body as an XML document.
func (c *Client) FetchXML(ctx context.Context, rawURL string) (*xmlquery.Node, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return doc, nil
}

// FetchBytes downloads rawURL and returns the raw body.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// findText returns the trimmed text of the first node matching expr under n,
// or "" when there is no match.
func findText(n *xmlquery.Node, expr string) string {
	node := xmlquery.FindOne(n, expr)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.InnerText())
}

// findTexts returns the trimmed, non-empty texts of every node matching expr
// under n, in document order.
func findTexts(n *xmlquery.Node, expr string) []string {
	var out []string
	for _, node := range xmlquery.Find(n, expr) {
		if text := strings.TrimSpace(node.InnerText()); text != "" {
			out = append(out, text)
		}
	}
	return out
}
