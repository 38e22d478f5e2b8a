package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used in narrative lines.
const DateLayout = "2006-01-02"

// OrderRecord represents one row of an order-history export.
type OrderRecord struct {
	Date            time.Time // Calendar date, time of day truncated
	ProductName     string
	ShippingAddress string // Raw address as exported
	UnitPrice       float64
}

// NormalizedAddress is a shipping address reduced to the parts worth narrating.
type NormalizedAddress struct {
	Name      string // Recipient-like prefix found before the house number, may be empty
	Remainder string // Street and locality with noise removed
}

// Key identifies the physical destination regardless of recipient.
func (a NormalizedAddress) Key() string {
	return a.Remainder
}

// ShipmentEvent pairs a destination with the day something was shipped there.
type ShipmentEvent struct {
	Date    time.Time
	Address NormalizedAddress
}

// NarrativeLine is the human-readable summary of a single kept order.
type NarrativeLine struct {
	Date    time.Time
	Product string
	Address string // Rendered address, with or without the name prefix
	Price   float64
}

// FormatPrice renders an amount as a two-decimal dollar string.
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func (l NarrativeLine) String() string {
	return fmt.Sprintf("%s: %s - %s - shipped to %s",
		l.Date.Format(DateLayout),
		l.Product,
		FormatPrice(l.Price),
		l.Address)
}
