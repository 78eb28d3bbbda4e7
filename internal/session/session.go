// Package session runs one operator interaction against the ledger: refresh
// the table, compute the YTD baseline, compose the day's row and write the
// whole table back.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rezmoss/prodlog/internal/ledger"
	"github.com/rezmoss/prodlog/internal/store"
	"github.com/rezmoss/prodlog/internal/timer"
)

var (
	ErrDuplicateDate = errors.New("an entry for this date already exists")
	ErrNoRecord      = errors.New("no entry for this date")
	ErrReadFailed    = errors.New("ledger could not be read")
)

// Session is the per-operator state carried between interactions. Handlers
// take it by value and hand back the updated copy.
type Session struct {
	ID          string
	Timer       timer.Timer
	FormVersion int
}

// New starts a session with an idle timer.
func New() Session {
	return Session{ID: uuid.NewString()}
}

// StartTimer opens a downtime segment.
func StartTimer(sess Session, now time.Time) (Session, error) {
	err := sess.Timer.Start(now)
	return sess, err
}

// StopTimer closes the open downtime segment.
func StopTimer(sess Session, now time.Time) (Session, error) {
	err := sess.Timer.Stop(now)
	return sess, err
}

// ResetTimer clears the downtime total.
func ResetTimer(sess Session) Session {
	sess.Timer.Reset()
	return sess
}

// Form is the day's entry as typed by the operator, minus downtime, which
// comes from the session timer.
type Form struct {
	Date       time.Time
	Jobs       int
	Production int
	Trials     int
	AmMinutes  int
	PmMinutes  int
	Issues     []string
}

// Snapshot is one read of the ledger. When the read failed Rows is empty and
// Err says why; callers show a warning and carry on.
type Snapshot struct {
	Rows []ledger.Row
	Err  error
}

// Preview is what the form shows before submission.
type Preview struct {
	Baseline  ledger.Baseline
	Duplicate bool
}

// Service binds the ledger source to the operator surfaces.
type Service struct {
	src        store.Source
	log        *zap.Logger
	dateLayout string
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDateLayout sets how ProductionDate is written.
func WithDateLayout(layout string) Option {
	return func(s *Service) { s.dateLayout = layout }
}

func NewService(src store.Source, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		src:        src,
		log:        log,
		dateLayout: ledger.DefaultDateLayout,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }

// DateLayout is how new rows write ProductionDate.
func (s *Service) DateLayout() string { return s.dateLayout }

// Load reads the ledger, degrading to an empty table on failure.
func (s *Service) Load(ctx context.Context) Snapshot {
	rows, err := s.src.Read(ctx)
	if err != nil {
		s.log.Warn("ledger read failed, continuing with empty ledger", zap.Error(err))
		return Snapshot{Err: fmt.Errorf("%w: %v", ErrReadFailed, err)}
	}
	s.log.Debug("ledger loaded", zap.Int("rows", len(rows)))
	return Snapshot{Rows: rows}
}

// Preview computes the form's derived values for date from snap.
func (s *Service) Preview(snap Snapshot, date time.Time) Preview {
	return Preview{
		Baseline:  ledger.ComputeBaseline(date, snap.Rows),
		Duplicate: ledger.RecordExistsForDate(date, snap.Rows),
	}
}

// Submit records the form. The ledger is re-read first so the baseline and
// duplicate check see the latest table. Downtime is the session timer's total
// at submission. On success the returned session has its timer reset and its
// form version bumped; on any failure the input session comes back unchanged.
//
// A failed re-read aborts the submission: writing back a table that could not
// be read would replace the whole ledger with the one new row.
func (s *Service) Submit(ctx context.Context, sess Session, f Form) (Session, ledger.Row, error) {
	log := s.log.With(zap.String("session", sess.ID), zap.String("date", f.Date.Format("2006-01-02")))
	now := s.now()

	entry := ledger.Entry{
		Date:       ledger.Day(f.Date),
		Jobs:       f.Jobs,
		Production: f.Production,
		Trials:     f.Trials,
		AmMinutes:  f.AmMinutes,
		PmMinutes:  f.PmMinutes,
		Issues:     f.Issues,
		Downtime:   sess.Timer.Display(now),
		DateLayout: s.dateLayout,
	}
	if err := entry.Validate(); err != nil {
		return sess, nil, err
	}

	rows, err := s.src.Read(ctx)
	if err != nil {
		log.Error("ledger read failed before submit", zap.Error(err))
		return sess, nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if ledger.RecordExistsForDate(entry.Date, rows) {
		log.Info("duplicate submission blocked")
		return sess, nil, fmt.Errorf("%s: %w", entry.Date.Format("2006-01-02"), ErrDuplicateDate)
	}

	row := ledger.BuildRecord(entry, ledger.ComputeBaseline(entry.Date, rows))
	if err := s.src.ReplaceAll(ctx, ledger.Upsert(rows, row)); err != nil {
		log.Error("ledger write failed", zap.Error(err))
		return sess, nil, fmt.Errorf("write ledger: %w", err)
	}

	log.Info("entry saved",
		zap.String("production", row[ledger.ColDailyProduction]),
		zap.String("ytd_production", row[ledger.ColYearProduction]),
		zap.String("downtime", row[ledger.ColDowntime]),
		zap.Int("rows", len(rows)+1))

	next := sess
	next.Timer.Reset()
	next.FormVersion++
	return next, row, nil
}

// Delete removes the entry dated date and returns how many rows went.
func (s *Service) Delete(ctx context.Context, date time.Time) (int, error) {
	rows, err := s.src.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	kept := ledger.DeleteByDate(rows, date)
	removed := len(rows) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%s: %w", ledger.Day(date).Format("2006-01-02"), ErrNoRecord)
	}
	if err := s.src.ReplaceAll(ctx, kept); err != nil {
		return 0, fmt.Errorf("write ledger: %w", err)
	}
	s.log.Info("entry deleted", zap.String("date", ledger.Day(date).Format("2006-01-02")), zap.Int("removed", removed))
	return removed, nil
}

// Edit changes cells of the entry dated date and returns the edited row.
// Running totals on this or any other row are not recomputed.
func (s *Service) Edit(ctx context.Context, date time.Time, changes map[string]string) (ledger.Row, error) {
	day := ledger.Day(date).Format("2006-01-02")
	rows, err := s.src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	edited, n, err := ledger.EditByDate(rows, date, changes)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", day, ErrNoRecord)
	}
	if err := s.src.ReplaceAll(ctx, edited); err != nil {
		return nil, fmt.Errorf("write ledger: %w", err)
	}

	cols := make([]string, 0, len(changes))
	for col := range changes {
		cols = append(cols, col)
	}
	s.log.Info("entry edited", zap.String("date", day), zap.Strings("columns", cols), zap.Int("rows", n))

	for _, r := range edited {
		if d, ok := r.Date(); ok && d.Equal(ledger.Day(date)) {
			return r, nil
		}
	}
	return nil, nil
}

// Summary is the header block of the reporting surface.
type Summary struct {
	ledger.YearTotals
	Target   int
	Progress float64
	Issues   []ledger.IssueCount
}

// Summarize computes year totals and progress against target from snap.
func Summarize(snap Snapshot, year, target int) Summary {
	totals := ledger.ComputeYearTotals(snap.Rows, year)
	return Summary{
		YearTotals: totals,
		Target:     target,
		Progress:   ledger.TargetProgress(totals.Production, target),
		Issues:     ledger.IssueFrequency(snap.Rows, year),
	}
}

// Summary loads the ledger and summarizes year. A failed read yields the
// empty summary along with the read error.
func (s *Service) Summary(ctx context.Context, year, target int) (Summary, error) {
	snap := s.Load(ctx)
	return Summarize(snap, year, target), snap.Err
}
