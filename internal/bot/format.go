package bot

import (
	"fmt"
	"strings"
	"time"

	"legisradar/internal/model"
	"legisradar/internal/storage"
)

const displayTimeLayout = "02/01/2006 15:04"

// FormatBillNotification formats a newly tracked bill as a Telegram
// notification message.
func FormatBillNotification(bill *model.Bill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nova matéria: %s", bill.Name)
	if bill.Summary != "" {
		b.WriteString("\n\n")
		b.WriteString(bill.Summary)
	}
	if bill.Keywords != "" {
		fmt.Fprintf(&b, "\n\nPalavras-chave: %s", bill.Keywords)
	}
	if bill.Authors != "" {
		fmt.Fprintf(&b, "\nAutoria: %s", bill.Authors)
	}
	if bill.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(bill.URL)
	}
	return b.String()
}

// FormatNewsNotification formats a news item as a Telegram notification
// message.
func FormatNewsNotification(item *model.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", item.FeedName)
	b.WriteString(item.Title)
	if item.Summary != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Summary)
	}
	if item.Keywords != "" {
		fmt.Fprintf(&b, "\n\nPalavras-chave: %s", item.Keywords)
	}
	if item.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Link)
	}
	return b.String()
}

// FormatBillList formats the most recent bills for display.
func FormatBillList(bills []model.Bill) string {
	if len(bills) == 0 {
		return "Nenhuma matéria rastreada até agora."
	}
	var b strings.Builder
	b.WriteString("Últimas matérias:\n")
	for _, bill := range bills {
		fmt.Fprintf(&b, "\n%s", bill.Name)
		if bill.PresentedAt != "" {
			fmt.Fprintf(&b, " (apresentada em %s)", bill.PresentedAt)
		}
		b.WriteString("\n")
		if bill.Keywords != "" {
			fmt.Fprintf(&b, "   %s\n", bill.Keywords)
		}
		if bill.URL != "" {
			fmt.Fprintf(&b, "   %s\n", bill.URL)
		}
	}
	return b.String()
}

// FormatEventList formats the upcoming meetings for display, with times
// rendered in the configured timezone.
func FormatEventList(events []model.Event, loc *time.Location) string {
	if len(events) == 0 {
		return "Nenhuma reunião futura relacionada às matérias acompanhadas."
	}
	var b strings.Builder
	b.WriteString("Próximas reuniões:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "\n%s", e.StartsAt.In(loc).Format(displayTimeLayout))
		if e.Location != "" {
			fmt.Fprintf(&b, " | %s", e.Location)
		}
		b.WriteString("\n")
		if summary := eventSummary(e.Description); summary != "" {
			fmt.Fprintf(&b, "   %s\n", summary)
		}
	}
	return b.String()
}

// FormatStatus formats the stored record totals.
func FormatStatus(counts storage.Counts) string {
	return fmt.Sprintf("Matérias rastreadas: %d\nReuniões na agenda: %d\nNotícias guardadas: %d",
		counts.Bills, counts.Events, counts.News)
}

// eventSummary returns the meeting objective when the description carries
// one, otherwise the description's first line.
func eventSummary(description string) string {
	lines := strings.Split(description, "\n")
	for i, line := range lines {
		if line == "**Finalidade**" && i+1 < len(lines) {
			return lines[i+1]
		}
	}
	return strings.TrimSpace(lines[0])
}
