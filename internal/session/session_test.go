package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rezmoss/prodlog/internal/ledger"
	"github.com/rezmoss/prodlog/internal/store"
	"github.com/rezmoss/prodlog/internal/timer"
)

var clock = time.Date(2026, 2, 15, 16, 30, 0, 0, time.UTC)

func newService(t *testing.T, src store.Source) *Service {
	return NewService(src, zaptest.NewLogger(t), WithClock(func() time.Time { return clock }))
}

func seeded() *store.Memory {
	return store.NewMemory(
		ledger.Row{ledger.ColDate: "01/05/2026", ledger.ColDailyProduction: "1000", ledger.ColJobs: "2"},
		ledger.Row{ledger.ColDate: "02/10/2026", ledger.ColDailyProduction: "500", ledger.ColJobs: "1", ledger.ColTrials: "1"},
	)
}

func TestSubmitComposesAndWrites(t *testing.T) {
	src := seeded()
	svc := newService(t, src)

	sess := New()
	sess, err := StartTimer(sess, clock.Add(-90*time.Minute))
	require.NoError(t, err)
	sess, err = StopTimer(sess, clock.Add(-30*time.Minute))
	require.NoError(t, err)

	next, row, err := svc.Submit(context.Background(), sess, Form{
		Date:       time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Jobs:       3,
		Production: 700,
		AmMinutes:  45,
		PmMinutes:  45,
		Issues:     []string{"UV lamp issues"},
	})
	require.NoError(t, err)

	assert.Equal(t, "2200", row[ledger.ColYearProduction])
	assert.Equal(t, "6", row[ledger.ColYtdJobs])
	assert.Equal(t, "1:00:00", row[ledger.ColDowntime])
	assert.Equal(t, "90 mins", row[ledger.ColCleanTotal])
	assert.Equal(t, "1", row["Sunday"])
	assert.Equal(t, "UV lamp issues", row[ledger.IssueColumn(1)])

	rows := src.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "02/15/2026", rows[2][ledger.ColDate])
	assert.Equal(t, 1, src.Writes)

	assert.Equal(t, sess.ID, next.ID)
	assert.Equal(t, 1, next.FormVersion)
	assert.Equal(t, timer.Timer{}, next.Timer)
}

func TestSubmitFoldsRunningSegment(t *testing.T) {
	svc := newService(t, store.NewMemory())
	sess, err := StartTimer(New(), clock.Add(-5*time.Minute))
	require.NoError(t, err)

	next, row, err := svc.Submit(context.Background(), sess, Form{Date: clock})
	require.NoError(t, err)
	assert.Equal(t, "0:05:00", row[ledger.ColDowntime])
	assert.False(t, next.Timer.Running())
}

func TestSubmitBlocksDuplicate(t *testing.T) {
	src := seeded()
	svc := newService(t, src)
	sess := New()

	got, _, err := svc.Submit(context.Background(), sess, Form{Date: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)})
	assert.ErrorIs(t, err, ErrDuplicateDate)
	assert.Equal(t, sess, got)
	assert.Equal(t, 0, src.Writes)
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	src := seeded()
	svc := newService(t, src)

	_, _, err := svc.Submit(context.Background(), New(), Form{Date: clock, Production: -1})
	assert.ErrorIs(t, err, ledger.ErrNegativeValue)

	_, _, err = svc.Submit(context.Background(), New(), Form{Date: clock, Issues: []string{"Aliens"}})
	assert.ErrorIs(t, err, ledger.ErrUnknownIssue)
	assert.Equal(t, 0, src.Writes)
}

func TestSubmitWriteFailureKeepsSession(t *testing.T) {
	src := seeded()
	src.WriteErr = errors.New("quota exceeded")
	svc := newService(t, src)

	sess, err := StartTimer(New(), clock.Add(-time.Minute))
	require.NoError(t, err)

	got, row, err := svc.Submit(context.Background(), sess, Form{Date: clock})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Nil(t, row)
	assert.Equal(t, sess, got, "timer survives so the operator can resubmit")
	assert.Len(t, src.Rows(), 2)
}

func TestSubmitRefusesAfterFailedRead(t *testing.T) {
	src := seeded()
	src.ReadErr = errors.New("connection refused")
	svc := newService(t, src)

	_, _, err := svc.Submit(context.Background(), New(), Form{Date: clock})
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.Equal(t, 0, src.Writes)
}

func TestLoadDegradesToEmpty(t *testing.T) {
	src := seeded()
	src.ReadErr = errors.New("connection refused")
	svc := newService(t, src)

	snap := svc.Load(context.Background())
	assert.ErrorIs(t, snap.Err, ErrReadFailed)
	assert.Empty(t, snap.Rows)

	p := svc.Preview(snap, clock)
	assert.False(t, p.Duplicate)
	assert.Equal(t, ledger.Baseline{}, p.Baseline)
}

func TestPreview(t *testing.T) {
	svc := newService(t, seeded())
	snap := svc.Load(context.Background())
	require.NoError(t, snap.Err)

	p := svc.Preview(snap, clock)
	assert.False(t, p.Duplicate)
	assert.Equal(t, ledger.Ytd{Production: 1500, Jobs: 3, Trials: 1}, p.Baseline.Year)

	assert.True(t, svc.Preview(snap, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)).Duplicate)
}

func TestDelete(t *testing.T) {
	src := seeded()
	svc := newService(t, src)

	n, err := svc.Delete(context.Background(), time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	rows := src.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "02/10/2026", rows[0][ledger.ColDate])
	// The surviving snapshot is not recomputed.
	assert.Equal(t, "0", rows[0][ledger.ColYearProduction])

	_, err = svc.Delete(context.Background(), time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestTimerHandlers(t *testing.T) {
	sess := New()
	sess, err := StartTimer(sess, clock)
	require.NoError(t, err)
	_, err = StartTimer(sess, clock)
	assert.ErrorIs(t, err, timer.ErrAlreadyRunning)

	sess = ResetTimer(sess)
	assert.False(t, sess.Timer.Running())
	_, err = StopTimer(sess, clock)
	assert.ErrorIs(t, err, timer.ErrNotRunning)
}

func TestSummarize(t *testing.T) {
	snap := Snapshot{Rows: []ledger.Row{
		{ledger.ColDate: "2026-01-02", ledger.ColDailyProduction: "4840000", ledger.ColDowntime: "2:30:00", ledger.IssueColumn(1): "Meeting"},
	}}
	s := Summarize(snap, 2026, 9680000)
	assert.Equal(t, 4840000, s.Production)
	assert.InDelta(t, 50.0, s.Progress, 1e-9)
	assert.Equal(t, 150*time.Minute, s.Downtime)
	assert.Equal(t, []ledger.IssueCount{{Issue: "Meeting", Count: 1}}, s.Issues)
}

func TestEdit(t *testing.T) {
	src := store.NewMemory(
		ledger.Row{ledger.ColDate: "01/05/2026", ledger.ColDailyProduction: "1000", ledger.ColYearProduction: "1000"},
		ledger.Row{ledger.ColDate: "02/10/2026", ledger.ColDailyProduction: "500", ledger.ColYearProduction: "1500"},
	)
	svc := newService(t, src)
	jan5 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	row, err := svc.Edit(context.Background(), jan5, map[string]string{
		ledger.ColDailyProduction: "1,200",
		ledger.IssueColumn(1):     "uv lamp issues",
	})
	require.NoError(t, err)
	assert.Equal(t, "1200", row[ledger.ColDailyProduction])
	assert.Equal(t, "UV lamp issues", row[ledger.IssueColumn(1)])
	assert.Equal(t, 1, src.Writes)

	rows := src.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "1200", rows[0][ledger.ColDailyProduction])
	// Running totals stay as they were recorded.
	assert.Equal(t, "1000", rows[0][ledger.ColYearProduction])
	assert.Equal(t, "1500", rows[1][ledger.ColYearProduction])
	assert.Equal(t, "500", rows[1][ledger.ColDailyProduction])
}

func TestEditFailures(t *testing.T) {
	jan5 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("missing date", func(t *testing.T) {
		src := seeded()
		_, err := newService(t, src).Edit(context.Background(), clock, map[string]string{ledger.ColJobs: "4"})
		assert.ErrorIs(t, err, ErrNoRecord)
		assert.Equal(t, 0, src.Writes)
	})

	t.Run("read failure", func(t *testing.T) {
		src := seeded()
		src.ReadErr = errors.New("connection refused")
		_, err := newService(t, src).Edit(context.Background(), jan5, map[string]string{ledger.ColJobs: "4"})
		assert.ErrorIs(t, err, ErrReadFailed)
		assert.Equal(t, 0, src.Writes)
	})

	t.Run("bad cell", func(t *testing.T) {
		src := seeded()
		svc := newService(t, src)
		_, err := svc.Edit(context.Background(), jan5, map[string]string{"Colour": "red"})
		assert.ErrorIs(t, err, ledger.ErrUnknownColumn)
		_, err = svc.Edit(context.Background(), jan5, map[string]string{ledger.ColJobs: "lots"})
		assert.ErrorIs(t, err, ledger.ErrInvalidCell)
		_, err = svc.Edit(context.Background(), jan5, map[string]string{ledger.ColJobs: "-1"})
		assert.ErrorIs(t, err, ledger.ErrNegativeValue)
		_, err = svc.Edit(context.Background(), jan5, map[string]string{ledger.ColDate: "01/06/2026"})
		assert.ErrorIs(t, err, ledger.ErrProtectedColumn)
		assert.Equal(t, 0, src.Writes)
		assert.Equal(t, "2", src.Rows()[0][ledger.ColJobs])
	})
}
