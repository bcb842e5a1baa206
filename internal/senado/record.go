package senado

import (
	"strings"

	"legisradar/internal/model"
)

// textQueue holds the document URLs still to be scanned for one in-flight
// bill. It drains exactly one element per completed document fetch.
type textQueue []string

func (q textQueue) pop() (string, textQueue) {
	return q[0], q[1:]
}

// billRecord accumulates one bill's fields across the enrichment chain and
// owns its matched-keyword set until finalization.
type billRecord struct {
	code    string
	bill    model.Bill
	matched []string
	seen    map[string]struct{}
}

func newBillRecord(code string) *billRecord {
	return &billRecord{code: code, seen: make(map[string]struct{})}
}

// addKeywords unions kws into the matched set. The set only ever grows, and
// keeps each keyword at the position it was first discovered.
func (r *billRecord) addKeywords(kws []string) {
	for _, kw := range kws {
		if _, ok := r.seen[kw]; ok {
			continue
		}
		r.seen[kw] = struct{}{}
		r.matched = append(r.matched, kw)
	}
}

// finalize flattens the matched set into the bill and applies the keyword
// filter. The second return is false when filtering is enabled and no
// keyword matched anywhere along the chain.
func (r *billRecord) finalize(filtering bool) (*model.Bill, bool) {
	r.bill.Keywords = strings.Join(r.matched, ", ")
	if filtering && r.bill.Keywords == "" {
		return nil, false
	}
	bill := r.bill
	return &bill, true
}
