// Package orders turns an order-history export into a de-duplicated,
// chronological narrative.
package orders

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/orderlens/internal/common"
	"github.com/Veraticus/orderlens/internal/model"
)

// Required export columns.
const (
	ColumnOrderDate       = "Order Date"
	ColumnProductName     = "Product Name"
	ColumnShippingAddress = "Shipping Address"
	ColumnUnitPrice       = "Unit Price"
)

// UnknownAddress stands in for rows exported without a shipping address.
const UnknownAddress = "unknown address"

var requiredColumns = []string{
	ColumnOrderDate,
	ColumnProductName,
	ColumnShippingAddress,
	ColumnUnitPrice,
}

var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Stats summarizes what happened to the rows of an export.
type Stats struct {
	Rows           int
	Kept           int
	MissingFields  int
	BadDates       int
	DefaultedPrice int
}

// ReadCSV parses an order-history export. It fails with a *common.SchemaError
// when a required column is absent; rows without a date or product name, or
// with an unparseable date, are skipped and counted in Stats.
func ReadCSV(r io.Reader) ([]model.OrderRecord, Stats, error) {
	var stats Stats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, &common.SchemaError{Column: ColumnOrderDate}
		}
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, stats, &common.SchemaError{Column: col}
		}
	}

	field := func(row []string, col string) (string, bool) {
		i := index[col]
		if i >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[i])
		if _, missing := missingTokens[strings.ToLower(v)]; missing {
			return "", false
		}
		return v, true
	}

	var records []model.OrderRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		rawDate, hasDate := field(row, ColumnOrderDate)
		product, hasProduct := field(row, ColumnProductName)
		if !hasDate || !hasProduct {
			stats.MissingFields++
			continue
		}

		date, ok := ParseDate(rawDate)
		if !ok {
			stats.BadDates++
			continue
		}

		address, hasAddress := field(row, ColumnShippingAddress)
		if !hasAddress {
			address = UnknownAddress
		}

		price := 0.0
		rawPrice, hasPrice := field(row, ColumnUnitPrice)
		if parsed, ok := parsePrice(rawPrice); hasPrice && ok {
			price = parsed
		} else {
			stats.DefaultedPrice++
		}

		records = append(records, model.OrderRecord{
			Date:            date,
			ProductName:     product,
			ShippingAddress: address,
			UnitPrice:       price,
		})
		stats.Kept++
	}

	return records, stats, nil
}

// ParseDate parses an export date and truncates it to its calendar day in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func parsePrice(s string) (float64, bool) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
