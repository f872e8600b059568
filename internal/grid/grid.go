// Package grid reads the month-tab layout: a header row of date labels, one
// 6-column block of selection cells per date, and one row per client per
// delivery.
package grid

import (
	"strconv"
	"strings"
	"time"

	"github.com/friskawellness/billing-service/internal/dateparse"
	"github.com/friskawellness/billing-service/internal/timeutil"
)

// Grid is the raw 2D cell range returned by the data source. Cells are
// strings or numbers; short rows are legal and read as empty.
type Grid [][]any

// Layout mirrors config.LayoutConfig for the columns the grid cares about.
type Layout struct {
	ClientColumn        int
	TypeColumn          int
	DeliveryPriceColumn int
	FirstDateColumn     int
	BlockWidth          int
}

// Cell returns the trimmed text of a cell, or "" when the row is too short.
func Cell(row []any, idx int) string {
	raw := Raw(row, idx)
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(stringify(raw))
}

// Raw returns the untyped cell value, or nil when the row is too short.
func Raw(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// NormalizeName collapses whitespace and lower-cases for client matching.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// HeaderDates scans the first row for date labels, one block apart, starting
// at the layout's first date column. Every parsed date anchors its block
// column. The scan stops at the first cell that neither parses nor holds any
// text, provided at least one date was already found; stray header text is
// skipped without ending the scan. Dates inside [start, end] are returned in
// scan order as the confirmed dates.
func (g Grid) HeaderDates(layout Layout, start, end, ref time.Time) (confirmed []time.Time, blocks map[time.Time]int) {
	blocks = make(map[time.Time]int)
	if len(g) == 0 {
		return nil, blocks
	}
	header := g[0]
	for c := layout.FirstDateColumn; c < len(header); c += layout.BlockWidth {
		d, ok := dateparse.Parse(Raw(header, c), ref)
		if ok {
			d = timeutil.Day(d)
			blocks[d] = c
			if timeutil.InRange(d, start, end) {
				confirmed = append(confirmed, d)
			}
			continue
		}
		if len(blocks) > 0 && Cell(header, c) == "" {
			break
		}
	}
	return confirmed, blocks
}

// ClientRows returns the indexes of every row whose client-name cell matches
// the target, after whitespace/case normalization. A client with several
// deliveries legitimately owns several rows.
func (g Grid) ClientRows(layout Layout, client string) []int {
	key := NormalizeName(client)
	if key == "" {
		return nil
	}
	var rows []int
	for r, row := range g {
		if NormalizeName(Cell(row, layout.ClientColumn)) == key {
			rows = append(rows, r)
		}
	}
	return rows
}

// Row returns the raw row at index r, or nil when out of bounds.
func (g Grid) Row(r int) []any {
	if r < 0 || r >= len(g) {
		return nil
	}
	return g[r]
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// Sheets returns unformatted numbers as float64.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}
