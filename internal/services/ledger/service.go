// Package ledger reads and writes the BillingCycle tab that stores each
// client's cycle boundaries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/friskawellness/billing-service/internal/dateparse"
	"github.com/friskawellness/billing-service/internal/grid"
)

var (
	// ErrClientNotFound is recoverable: the caller can fall back to manual
	// date entry.
	ErrClientNotFound = errors.New("ledger: no cycle row for client")
	// ErrLedgerInvalid means the tab is missing, empty, or lacks the
	// Client|Start|End header row.
	ErrLedgerInvalid = errors.New("ledger: tab must have headers Client | Start | End and at least one data row")
)

// MalformedRowError reports a ledger row whose Start/End cells exist but do
// not parse.
type MalformedRowError struct {
	Client string
	Tab    string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("ledger: invalid Start/End for %q in %q; use dates like 02-Nov-2025", e.Client, e.Tab)
}

// Entry is one cycle row. Row is the 1-based sheet row, kept so a later
// update can overwrite the same row.
type Entry struct {
	Client string    `json:"client"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Row    int       `json:"row"`
}

// Source is what the ledger needs from the spreadsheet collaborator.
type Source interface {
	FetchValues(ctx context.Context, a1Range string) ([][]any, error)
	AppendRow(ctx context.Context, tab string, values []any) error
	UpdateRow(ctx context.Context, tab string, row int, values []any) error
}

// Service accesses one billing-cycle tab. There is no compare-and-swap on
// writes: two concurrent saves for the same client race and the last one
// wins, which is acceptable for the single-operator usage pattern.
type Service struct {
	source Source
	tab    string
	now    func() time.Time
}

func NewService(source Source, tab string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{source: source, tab: tab, now: now}
}

// CurrentCycle returns the client's current cycle. Name matching is
// case/whitespace-insensitive, and when several rows match, the last one in
// file order wins — append order, not chronological order, defines
// "current".
func (s *Service) CurrentCycle(ctx context.Context, client string) (Entry, error) {
	rows, err := s.source.FetchValues(ctx, s.tab+"!A1:C10000")
	if err != nil {
		return Entry{}, err
	}
	if len(rows) < 2 {
		return Entry{}, ErrLedgerInvalid
	}

	ci, si, ei, err := headerIndexes(rows[0])
	if err != nil {
		return Entry{}, err
	}

	minLen := ci
	if si > minLen {
		minLen = si
	}
	if ei > minLen {
		minLen = ei
	}
	minLen++

	key := grid.NormalizeName(client)
	var (
		last    []any
		lastRow int
	)
	for r, row := range rows[1:] {
		// Truncated rows cannot hold the date cells and never match.
		if len(row) < minLen {
			continue
		}
		if grid.NormalizeName(grid.Cell(row, ci)) == key {
			last = row
			lastRow = r + 2 // 1-based, after the header row
		}
	}
	if last == nil {
		return Entry{}, fmt.Errorf("%w: %q in %q", ErrClientNotFound, client, s.tab)
	}

	ref := s.now()
	start, okStart := dateparse.Parse(grid.Raw(last, si), ref)
	end, okEnd := dateparse.Parse(grid.Raw(last, ei), ref)
	if !okStart || !okEnd {
		return Entry{}, &MalformedRowError{Client: client, Tab: s.tab}
	}

	return Entry{
		Client: grid.Cell(last, ci),
		Start:  start,
		End:    end,
		Row:    lastRow,
	}, nil
}

// Append adds a new cycle row at the bottom of the tab.
func (s *Service) Append(ctx context.Context, client string, start, end time.Time) error {
	return s.source.AppendRow(ctx, s.tab, cycleRow(client, start, end))
}

// Update overwrites the cycle row at the given 1-based sheet row. The row
// must have been located by a prior CurrentCycle call; the header row is
// never a valid target.
func (s *Service) Update(ctx context.Context, row int, client string, start, end time.Time) error {
	if row < 2 {
		return fmt.Errorf("ledger: row %d is not a data row", row)
	}
	return s.source.UpdateRow(ctx, s.tab, row, cycleRow(client, start, end))
}

func cycleRow(client string, start, end time.Time) []any {
	return []any{client, dateparse.FormatCycleDate(start), dateparse.FormatCycleDate(end)}
}

func headerIndexes(header []any) (ci, si, ei int, err error) {
	ci, si, ei = -1, -1, -1
	for i := range header {
		switch strings.ToLower(grid.Cell(header, i)) {
		case "client":
			if ci < 0 {
				ci = i
			}
		case "start":
			if si < 0 {
				si = i
			}
		case "end":
			if ei < 0 {
				ei = i
			}
		}
	}
	if ci < 0 || si < 0 || ei < 0 {
		return 0, 0, 0, ErrLedgerInvalid
	}
	return ci, si, ei, nil
}
