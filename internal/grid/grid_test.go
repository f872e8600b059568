package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ref       = time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	testStart = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)
)

// Compact layout for tests: client in column 1, dates from column 3, blocks
// of two cells.
var testLayout = Layout{
	ClientColumn:        1,
	TypeColumn:          2,
	DeliveryPriceColumn: 2,
	FirstDateColumn:     3,
	BlockWidth:          2,
}

func TestHeaderDatesScanAndStop(t *testing.T) {
	g := Grid{
		{"", "", "", "01-Nov-25", "", "02-Nov-25", "", "", "", "05-Nov-25"},
	}
	confirmed, blocks := g.HeaderDates(testLayout, testStart, testEnd, ref)

	// Scan finds 01-Nov at col 3 and 02-Nov at col 5, then stops at the
	// blank col 7 sentinel; the later date at col 9 is never reached.
	require.Len(t, confirmed, 2)
	assert.Equal(t, 1, confirmed[0].Day())
	assert.Equal(t, 2, confirmed[1].Day())
	assert.Equal(t, 3, blocks[confirmed[0]])
	assert.Equal(t, 5, blocks[confirmed[1]])
	assert.Len(t, blocks, 2)
}

func TestHeaderDatesToleratesStrayText(t *testing.T) {
	g := Grid{
		{"", "", "", "01-Nov-25", "", "notes", "", "03-Nov-25"},
	}
	confirmed, blocks := g.HeaderDates(testLayout, testStart, testEnd, ref)

	// A non-blank unparseable cell does not end the scan.
	require.Len(t, confirmed, 2)
	assert.Equal(t, 3, confirmed[1].Day())
	assert.Equal(t, 7, blocks[confirmed[1]])
}

func TestHeaderDatesFiltersRange(t *testing.T) {
	g := Grid{
		{"", "", "", "30-Oct-25", "", "01-Nov-25", "", "02-Dec-25"},
	}
	confirmed, blocks := g.HeaderDates(testLayout, testStart, testEnd, ref)

	require.Len(t, confirmed, 1)
	assert.Equal(t, time.November, confirmed[0].Month())
	// Out-of-range headers still anchor blocks.
	assert.Len(t, blocks, 3)
}

func TestHeaderDatesSerialNumbers(t *testing.T) {
	// 45962 is 01-Nov-2025.
	g := Grid{
		{"", "", "", 45962.0, "", 45963.0},
	}
	confirmed, _ := g.HeaderDates(testLayout, testStart, testEnd, ref)
	require.Len(t, confirmed, 2)
	assert.Equal(t, 1, confirmed[0].Day())
	assert.Equal(t, 2, confirmed[1].Day())
}

func TestHeaderDatesEmptyGrid(t *testing.T) {
	confirmed, blocks := Grid{}.HeaderDates(testLayout, testStart, testEnd, ref)
	assert.Empty(t, confirmed)
	assert.Empty(t, blocks)
}

func TestClientRowsNormalizedMatch(t *testing.T) {
	g := Grid{
		{"hdr"},
		{"", "Jane Doe"},
		{"", "  jane   DOE "},
		{"", "John Smith"},
		{"", ""},
		{"short row"},
	}
	rows := g.ClientRows(testLayout, "jane doe")
	assert.Equal(t, []int{1, 2}, rows)

	assert.Nil(t, g.ClientRows(testLayout, "nobody"))
	assert.Nil(t, g.ClientRows(testLayout, "   "))
}

func TestCellShortRows(t *testing.T) {
	row := []any{"a", 42.0}
	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "42", Cell(row, 1))
	assert.Equal(t, "", Cell(row, 5))
	assert.Nil(t, Raw(row, 5))
}
