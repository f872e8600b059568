package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows     [][]any
	fetchErr error

	appended [][]any
	updated  map[int][]any
}

func (f *fakeSource) FetchValues(ctx context.Context, a1Range string) ([][]any, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.rows, nil
}

func (f *fakeSource) AppendRow(ctx context.Context, tab string, values []any) error {
	f.appended = append(f.appended, values)
	return nil
}

func (f *fakeSource) UpdateRow(ctx context.Context, tab string, row int, values []any) error {
	if f.updated == nil {
		f.updated = make(map[int][]any)
	}
	f.updated[row] = values
	return nil
}

func now() time.Time {
	return time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)
}

func newService(src *fakeSource) *Service {
	return NewService(src, "BillingCycle", now)
}

func TestCurrentCycleLastFileOrderWins(t *testing.T) {
	src := &fakeSource{rows: [][]any{
		{"Client", "Start", "End"},
		{"Jane Doe", "01-Sep-2025", "30-Sep-2025"},
		{"John Smith", "05-Sep-2025", "04-Oct-2025"},
		// Earlier dates but later in the file: this row is the current one.
		{"jane  DOE", "01-Aug-2025", "30-Aug-2025"},
	}}

	entry, err := newService(src).CurrentCycle(context.Background(), "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, 4, entry.Row)
	assert.Equal(t, time.August, entry.Start.Month())
	assert.Equal(t, time.August, entry.End.Month())
}

func TestCurrentCycleSkipsTruncatedRows(t *testing.T) {
	src := &fakeSource{rows: [][]any{
		{"Client", "Start", "End"},
		{"Jane Doe", "01-Sep-2025", "30-Sep-2025"},
		// Later but missing the date cells; the complete row above stays
		// current.
		{"Jane Doe"},
		{"Jane Doe", "01-Oct-2025"},
	}}

	entry, err := newService(src).CurrentCycle(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Row)
	assert.Equal(t, time.September, entry.Start.Month())
}

func TestCurrentCycleHeaderCaseInsensitive(t *testing.T) {
	src := &fakeSource{rows: [][]any{
		{"CLIENT", "start", "End"},
		{"Jane Doe", "02-Nov-2025", "08-Dec-2025"},
	}}

	entry, err := newService(src).CurrentCycle(context.Background(), "jane doe")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Row)
	assert.Equal(t, time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC), entry.Start)
	assert.Equal(t, time.Date(2025, time.December, 8, 0, 0, 0, 0, time.UTC), entry.End)
}

func TestCurrentCycleSerialDates(t *testing.T) {
	// 45962 = 01-Nov-2025 as a sheet serial.
	src := &fakeSource{rows: [][]any{
		{"Client", "Start", "End"},
		{"Jane Doe", 45962.0, 45992.0},
	}}

	entry, err := newService(src).CurrentCycle(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), entry.Start)
}

func TestCurrentCycleClientNotFound(t *testing.T) {
	src := &fakeSource{rows: [][]any{
		{"Client", "Start", "End"},
		{"John Smith", "01-Sep-2025", "30-Sep-2025"},
	}}

	_, err := newService(src).CurrentCycle(context.Background(), "Jane Doe")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestCurrentCycleMalformedDates(t *testing.T) {
	src := &fakeSource{rows: [][]any{
		{"Client", "Start", "End"},
		{"Jane Doe", "soon", "later"},
	}}

	_, err := newService(src).CurrentCycle(context.Background(), "Jane Doe")
	var malformed *MalformedRowError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Jane Doe", malformed.Client)
	assert.Contains(t, malformed.Error(), "02-Nov-2025")
}

func TestCurrentCycleInvalidLedger(t *testing.T) {
	cases := [][][]any{
		nil,
		{{"Client", "Start", "End"}},
		{{"Name", "From", "To"}, {"Jane Doe", "01-Sep-2025", "30-Sep-2025"}},
	}
	for i, rows := range cases {
		src := &fakeSource{rows: rows}
		_, err := newService(src).CurrentCycle(context.Background(), "Jane Doe")
		assert.ErrorIs(t, err, ErrLedgerInvalid, "case %d", i)
	}
}

func TestCurrentCycleTransportError(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("network down")}
	_, err := newService(src).CurrentCycle(context.Background(), "Jane Doe")
	assert.EqualError(t, err, "network down")
}

func TestAppendWritesCycleFormat(t *testing.T) {
	src := &fakeSource{}
	err := newService(src).Append(context.Background(), "Jane Doe",
		time.Date(2025, time.November, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, src.appended, 1)
	assert.Equal(t, []any{"Jane Doe", "12-Nov-2025", "12-Dec-2025"}, src.appended[0])
}

func TestUpdateTargetsRow(t *testing.T) {
	src := &fakeSource{}
	svc := newService(src)

	err := svc.Update(context.Background(), 4, "Jane Doe",
		time.Date(2025, time.November, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []any{"Jane Doe", "12-Nov-2025", "12-Dec-2025"}, src.updated[4])

	// The header row is never a valid update target.
	assert.Error(t, svc.Update(context.Background(), 1, "Jane Doe", now(), now()))
}
