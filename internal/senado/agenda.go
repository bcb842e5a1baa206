package senado

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"legisradar/internal/model"
)

// agendaWindowDays bounds the crawled agenda to 30 days either side of now.
const agendaWindowDays = 30

const eventTimeLayout = "02/01/2006 15:04"

// AgendaSpider fetches the Senado meeting agenda and turns every meeting
// that references a tracked bill into an event.
type AgendaSpider struct {
	client   *Client
	patterns []*regexp.Regexp
	loc      *time.Location
	log      *slog.Logger

	now func() time.Time
}

// NewAgendaSpider creates a spider that keeps meetings mentioning a bill of
// one of the given subject codes.
func NewAgendaSpider(client *Client, subjects []string, loc *time.Location, log *slog.Logger) *AgendaSpider {
	return &AgendaSpider{
		client:   client,
		patterns: subjectPatterns(subjects),
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

// subjectPatterns compiles one "<code> ?<number>" pattern per subject code.
// Codes that do not compile are skipped.
func subjectPatterns(subjects []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(subjects))
	for _, subject := range subjects {
		re, err := regexp.Compile(subject + ` ?\d+`)
		if err != nil {
			continue
		}
		patterns = append(patterns, re)
	}
	return patterns
}

// Crawl fetches the agenda window around now and emits every meeting that
// references a tracked bill subject.
func (s *AgendaSpider) Crawl(ctx context.Context, emit func(*model.Event)) {
	now := s.now()
	start := now.AddDate(0, 0, -agendaWindowDays)
	end := now.AddDate(0, 0, agendaWindowDays)

	doc, err := s.client.FetchXML(ctx, s.client.AgendaURL(start, end))
	if err != nil {
		s.log.Error("fetch agenda", "error", err)
		return
	}

	for _, meeting := range xmlquery.Find(doc, "//Reuniao") {
		if ctx.Err() != nil {
			return
		}
		if !s.relatedToBill(meeting) {
			continue
		}
		event, err := s.parseEvent(meeting)
		if err != nil {
			s.log.Warn("parse agenda meeting", "error", err)
			continue
		}
		emit(event)
	}
}

// relatedToBill reports whether the meeting's raw XML mentions a tracked
// subject code followed by a bill number, with or without a space between
// them.
func (s *AgendaSpider) relatedToBill(meeting *xmlquery.Node) bool {
	raw := meeting.OutputXML(true)
	for _, re := range s.patterns {
		if re.MatchString(raw) {
			return true
		}
	}
	return false
}

func (s *AgendaSpider) parseEvent(meeting *xmlquery.Node) (*model.Event, error) {
	date := findText(meeting, "Data")
	hour := findText(meeting, "Hora")
	startsAt, err := time.ParseInLocation(eventTimeLayout, date+" "+hour, s.loc)
	if err != nil {
		return nil, fmt.Errorf("parse meeting time %q: %w", date+" "+hour, err)
	}

	return &model.Event{
		SiteID:      findText(meeting, "Codigo"),
		StartsAt:    startsAt,
		Description: composeDescription(meeting),
		Location:    findText(meeting, "Comissoes/Comissao/Nome"),
		Chamber:     model.ChamberSenado,
	}, nil
}

// composeDescription assembles the meeting description from its optional
// fragments. Present fragments keep a fixed order and are separated by blank
// lines; absent ones leave no trace.
func composeDescription(meeting *xmlquery.Node) string {
	var sections []string

	if objective := findText(meeting, "Partes/Parte/Finalidade"); objective != "" {
		sections = append(sections, "**Finalidade**\n"+objective)
	}
	if items := findTexts(meeting, "Partes/Parte/Itens/Item/Nome"); len(items) > 0 {
		sections = append(sections, "**Pauta**\n "+strings.Join(items, ", "))
	}
	if notes := findText(meeting, "Partes/Parte/Eventos/Evento/Observacoes"); notes != "" {
		sections = append(sections, "**Observações**\n"+notes)
	}
	if invitees := parseInvitees(meeting); len(invitees) > 0 {
		sections = append(sections, "**Convidados**\n\n"+strings.Join(invitees, "\n"))
	}

	return strings.Join(sections, "\n\n")
}

// parseInvitees renders one "* name (role)" line per listed invitee.
func parseInvitees(meeting *xmlquery.Node) []string {
	var lines []string
	for _, invitee := range xmlquery.Find(meeting, "Partes/Parte/Eventos/Convidados/Convidado") {
		name := findText(invitee, "Nome")
		role := findText(invitee, "Cargo")
		lines = append(lines, fmt.Sprintf("* %s (%s)", name, role))
	}
	return lines
}
