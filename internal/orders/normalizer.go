package orders

import (
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/orderlens/internal/model"
)

// DefaultDedupWindow is the minimum gap between two narrated shipments to the
// same address.
const DefaultDedupWindow = 30 * 24 * time.Hour

// Normalizer turns order records into narrative lines.
type Normalizer struct {
	simplifier *AddressSimplifier
	window     time.Duration
}

// NewNormalizer creates a normalizer. A non-positive window uses
// DefaultDedupWindow; a nil simplifier uses the default country list.
func NewNormalizer(window time.Duration, simplifier *AddressSimplifier) *Normalizer {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if simplifier == nil {
		simplifier = NewAddressSimplifier(nil)
	}
	return &Normalizer{
		simplifier: simplifier,
		window:     window,
	}
}

// Window returns the temporal de-duplication window.
func (n *Normalizer) Window() time.Duration {
	return n.window
}

// Normalize sorts records by date and keeps, per normalized address, the
// first shipment and every later one at least Window after the previously
// kept shipment. Discarded rows never move the comparison point but do count
// as the first sighting of their recipient name. The input slice is not
// modified.
func (n *Normalizer) Normalize(records []model.OrderRecord) []model.NarrativeLine {
	sorted := make([]model.OrderRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	names := NewNameRegistry()
	lastKept := make(map[string]time.Time)
	lines := make([]model.NarrativeLine, 0, len(sorted))

	for _, rec := range sorted {
		event := model.ShipmentEvent{
			Date:    rec.Date,
			Address: n.simplifier.Simplify(rec.ShippingAddress),
		}
		// Every row registers its name, kept or not.
		address := names.Render(event.Address)
		if !n.keep(lastKept, event) {
			continue
		}
		lastKept[event.Address.Key()] = event.Date

		lines = append(lines, model.NarrativeLine{
			Date:    rec.Date,
			Product: rec.ProductName,
			Price:   rec.UnitPrice,
			Address: address,
		})
	}

	return lines
}

func (n *Normalizer) keep(lastKept map[string]time.Time, event model.ShipmentEvent) bool {
	last, seen := lastKept[event.Address.Key()]
	return !seen || event.Date.Sub(last) >= n.window
}

// Narrate normalizes records and joins the resulting lines with newlines.
func (n *Normalizer) Narrate(records []model.OrderRecord) string {
	return JoinLines(n.Normalize(records))
}

// JoinLines renders narrative lines one per line.
func JoinLines(lines []model.NarrativeLine) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = line.String()
	}
	return strings.Join(rendered, "\n")
}
