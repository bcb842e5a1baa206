package senado

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"legisradar/internal/keyword"
	"legisradar/internal/model"
	"legisradar/internal/pdftext"
)

// ListRequest identifies one (subject, year) discovery combination.
type ListRequest struct {
	Subject string
	Year    int
}

// BillSpider walks every tracked bill through the detail, authorship and
// text-manifest lookups plus one fetch per attached PDF, accumulating
// keyword matches along the way.
type BillSpider struct {
	client    *Client
	matcher   *keyword.Matcher
	subjects  []string
	startDate time.Time
	log       *slog.Logger

	now     func() time.Time
	pdfText func(data []byte) (string, error)
}

// NewBillSpider creates a spider that discovers bills of the given subject
// codes presented from startDate's year onward.
func NewBillSpider(client *Client, matcher *keyword.Matcher, subjects []string, startDate time.Time, log *slog.Logger) *BillSpider {
	return &BillSpider{
		client:    client,
		matcher:   matcher,
		subjects:  subjects,
		startDate: startDate,
		log:       log,
		now:       time.Now,
		pdfText:   pdftext.Extract,
	}
}

// DiscoveryRequests returns one list lookup per (year, subject) pair, from
// the configured start year through the current year.
func (s *BillSpider) DiscoveryRequests() []ListRequest {
	var reqs []ListRequest
	for year := s.startDate.Year(); year <= s.now().Year(); year++ {
		for _, subject := range s.subjects {
			reqs = append(reqs, ListRequest{Subject: subject, Year: year})
		}
	}
	return reqs
}

// Crawl enumerates every discovery combination, enriches each listed bill
// and hands finished records to emit. A failure anywhere in one bill's chain
// drops that bill alone; sibling bills and other combinations proceed.
func (s *BillSpider) Crawl(ctx context.Context, emit func(*model.Bill)) {
	for _, req := range s.DiscoveryRequests() {
		if ctx.Err() != nil {
			return
		}
		codes, err := s.fetchList(ctx, req)
		if err != nil {
			s.log.Error("fetch bill list", "subject", req.Subject, "year", req.Year, "error", err)
			continue
		}
		s.log.Debug("bill list fetched", "subject", req.Subject, "year", req.Year, "bills", len(codes))

		for _, code := range codes {
			if ctx.Err() != nil {
				return
			}
			bill, err := s.enrich(ctx, code)
			if err != nil {
				s.log.Error("enrich bill", "code", code, "error", err)
				continue
			}
			if bill == nil {
				continue
			}
			emit(bill)
		}
	}
}

func (s *BillSpider) fetchList(ctx context.Context, req ListRequest) ([]string, error) {
	doc, err := s.client.FetchXML(ctx, s.client.ListURL(req.Subject, req.Year))
	if err != nil {
		return nil, err
	}
	return findTexts(doc, "//CodigoMateria"), nil
}

// enrich runs the full lookup chain for one bill code. It returns (nil, nil)
// when the bill completed the chain without matching any configured keyword.
func (s *BillSpider) enrich(ctx context.Context, code string) (*model.Bill, error) {
	detail, err := s.client.FetchXML(ctx, s.client.DetailURL(code))
	if err != nil {
		return nil, fmt.Errorf("detail: %w", err)
	}
	rec := s.parseDetail(detail, code)

	authorship, err := s.client.FetchXML(ctx, s.client.AuthorshipURL(code))
	if err != nil {
		return nil, fmt.Errorf("authorship: %w", err)
	}
	parseAuthorship(authorship, rec)

	manifest, err := s.client.FetchXML(ctx, s.client.TextsURL(code))
	if err != nil {
		return nil, fmt.Errorf("texts: %w", err)
	}
	pending := parseTextManifest(manifest)

	for len(pending) > 0 {
		var docURL string
		docURL, pending = pending.pop()
		if err := s.scanDocument(ctx, rec, docURL); err != nil {
			return nil, fmt.Errorf("document %s: %w", docURL, err)
		}
	}

	bill, ok := rec.finalize(s.matcher.Enabled())
	if !ok {
		return nil, nil
	}
	return bill, nil
}

// parseDetail seeds the record from the bill's detail document and collects
// keyword matches from the summary and the published keyword index.
func (s *BillSpider) parseDetail(doc *xmlquery.Node, code string) *billRecord {
	summary := findText(doc, "//EmentaMateria")
	rawKeywords := findText(doc, "//IndexacaoMateria")

	rec := newBillRecord(code)
	rec.bill = model.Bill{
		SiteID:      findText(doc, "//CodigoMateria"),
		Name:        fmt.Sprintf("%s %s", findText(doc, "//SiglaSubtipoMateria"), findText(doc, "//NumeroMateria")),
		Summary:     summary,
		RawKeywords: rawKeywords,
		PresentedAt: findText(doc, "//DataApresentacao"),
		Location:    findText(doc, "//NomeLocal"),
		Chamber:     model.ChamberSenado,
		URL:         s.client.BillPageURL(code),
	}
	rec.addKeywords(s.matcher.Match(summary))
	rec.addKeywords(s.matcher.Match(rawKeywords))
	return rec
}

func parseAuthorship(doc *xmlquery.Node, rec *billRecord) {
	rec.bill.Authors = strings.Join(findTexts(doc, "//NomeAutor"), ", ")
	rec.bill.AuthorIDs = strings.Join(findTexts(doc, "//IdentificacaoParlamentar/CodigoParlamentar"), ", ")
}

// parseTextManifest reads the attached-document manifest and queues the URLs
// of the PDF documents. Each entry is classified by its own type tag;
// entries without a URL or with a non-PDF type are skipped.
func parseTextManifest(doc *xmlquery.Node) textQueue {
	var queue textQueue
	for _, entry := range xmlquery.Find(doc, "//Textos/Texto") {
		docType := findText(entry, "TipoDocumento")
		docURL := findText(entry, "UrlTexto")
		if docURL == "" || !strings.EqualFold(docType, "pdf") {
			continue
		}
		queue = append(queue, docURL)
	}
	return queue
}

// scanDocument fetches one attached document and folds its keyword matches
// into the record. A payload the PDF parser cannot read contributes no
// keywords but does not fail the bill; a failed download does.
func (s *BillSpider) scanDocument(ctx context.Context, rec *billRecord, docURL string) error {
	data, err := s.client.FetchBytes(ctx, docURL)
	if err != nil {
		return err
	}
	text, err := s.pdfText(data)
	if err != nil {
		s.log.Warn("extract pdf text", "url", docURL, "error", err)
		return nil
	}
	rec.addKeywords(s.matcher.Match(text))
	return nil
}
