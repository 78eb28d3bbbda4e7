package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNegativeValue   = errors.New("value must not be negative")
	ErrUnknownIssue    = errors.New("unknown issue category")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrProtectedColumn = errors.New("column cannot be edited")
	ErrInvalidCell     = errors.New("invalid cell value")
)

// Entry is what an operator fills in for one day.
type Entry struct {
	Date       time.Time
	Jobs       int
	Production int
	Trials     int
	AmMinutes  int
	PmMinutes  int
	Issues     []string

	// Downtime is the formatted timer total, H:MM:SS.
	Downtime string

	// DateLayout formats ProductionDate; DefaultDateLayout when empty.
	DateLayout string
}

// Validate rejects negative counts and tags outside IssueCategories.
func (e Entry) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"jobs", e.Jobs},
		{"production", e.Production},
		{"trials", e.Trials},
		{"am clean minutes", e.AmMinutes},
		{"pm clean minutes", e.PmMinutes},
	} {
		if f.v < 0 {
			return fmt.Errorf("%s %d: %w", f.name, f.v, ErrNegativeValue)
		}
	}
	for _, tag := range e.Issues {
		tag = strings.TrimSpace(tag)
		if tag != "" && !IsKnownIssue(tag) {
			return fmt.Errorf("%q: %w", tag, ErrUnknownIssue)
		}
	}
	return nil
}

// FillIssueSlots lays tags into the ten slots in order. Blank tags are
// skipped, anything past the tenth is dropped and empty slots read NoIssue.
func FillIssueSlots(tags []string) [IssueSlots]string {
	var slots [IssueSlots]string
	n := 0
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if n == IssueSlots {
			break
		}
		slots[n] = tag
		n++
	}
	for i := n; i < IssueSlots; i++ {
		slots[i] = NoIssue
	}
	return slots
}

// BuildRecord composes the row for e. Every declared column is present; the
// derived totals are the baseline plus the day's own values.
func BuildRecord(e Entry, b Baseline) Row {
	layout := e.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}

	r := make(Row, len(Columns))
	for _, col := range Columns {
		r[col] = DefaultCell(col)
	}

	itoa := strconv.Itoa
	r[ColDate] = e.Date.Format(layout)
	r[ColTempDate] = e.Date.Format(isoDate)
	r[ColJobs] = itoa(e.Jobs)
	r[ColTrials] = itoa(e.Trials)
	r[ColDailyProduction] = itoa(e.Production)
	r[ColYearProduction] = itoa(b.Year.Production + e.Production)
	r[ColYtdJobs] = itoa(b.Year.Jobs + e.Jobs)
	r[ColMonthProduction] = itoa(b.Month.Production + e.Production)
	r[ColWeekProduction] = itoa(b.Week.Production + e.Production)
	r[ColCleanAm] = CleanMinutes(e.AmMinutes)
	r[ColCleanPm] = CleanMinutes(e.PmMinutes)
	r[ColCleanTotal] = CleanMinutes(e.AmMinutes + e.PmMinutes)
	r[ColDowntime] = e.Downtime
	r[WeekdayColumn(e.Date)] = "1"

	for i, tag := range FillIssueSlots(e.Issues) {
		r[IssueColumn(i+1)] = tag
	}
	return r
}

// Upsert appends row to rows and returns the table to write back. It never
// deduplicates; callers check RecordExistsForDate first.
func Upsert(rows []Row, row Row) []Row {
	out := make([]Row, 0, len(rows)+1)
	out = append(out, rows...)
	return append(out, row)
}

// DeleteByDate returns rows without those dated on date's calendar day.
// Rows with an unreadable date are kept.
func DeleteByDate(rows []Row, date time.Time) []Row {
	day := Day(date)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if d, ok := r.Date(); ok && d.Equal(day) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// countColumns hold whole, non-negative numbers.
var countColumns = map[string]bool{
	ColJobs:            true,
	ColTrials:          true,
	ColDailyProduction: true,
	ColWeekProduction:  true,
	ColMonthProduction: true,
	ColYearProduction:  true,
	ColYtdJobs:         true,
}

// EditRow returns a copy of r with changes applied. Only declared columns
// can be set, and the date columns are fixed since they key the row. Values
// are checked against the column's format; blank issue slots become NoIssue.
// Derived totals are taken as given, nothing is recomputed.
func EditRow(r Row, changes map[string]string) (Row, error) {
	out := Normalize(r)
	for col, v := range changes {
		col = strings.TrimSpace(col)
		v = strings.TrimSpace(v)
		if !declared[col] {
			return nil, fmt.Errorf("%q: %w", col, ErrUnknownColumn)
		}
		cell, err := editCell(col, v)
		if err != nil {
			return nil, err
		}
		out[col] = cell
	}
	return out, nil
}

func editCell(col, v string) (string, error) {
	switch {
	case col == ColDate || col == ColTempDate:
		return "", fmt.Errorf("%s: %w", col, ErrProtectedColumn)
	case countColumns[col]:
		if v == "" {
			return "0", nil
		}
		n, err := strconv.Atoi(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			return "", fmt.Errorf("%s %q: %w", col, v, ErrInvalidCell)
		}
		if n < 0 {
			return "", fmt.Errorf("%s %d: %w", col, n, ErrNegativeValue)
		}
		return strconv.Itoa(n), nil
	case col == ColDowntime:
		if _, ok := ParseDowntime(v); !ok {
			return "", fmt.Errorf("%s %q: want H:MM:SS: %w", col, v, ErrInvalidCell)
		}
		return v, nil
	case strings.HasPrefix(col, "ProductionIssues_"):
		if v == "" {
			return NoIssue, nil
		}
		return ResolveIssue(v)
	case isWeekday(col):
		if v != "" && v != "0" && v != "1" {
			return "", fmt.Errorf("%s %q: want 1 or blank: %w", col, v, ErrInvalidCell)
		}
		return v, nil
	}
	return v, nil
}

func isWeekday(col string) bool {
	for _, d := range WeekdayColumns {
		if d == col {
			return true
		}
	}
	return false
}

// EditByDate applies changes to every row dated on date's calendar day and
// returns the new table with the number of rows changed. Other rows,
// including their running totals, are left as they are.
func EditByDate(rows []Row, date time.Time, changes map[string]string) ([]Row, int, error) {
	day := Day(date)
	out := make([]Row, len(rows))
	n := 0
	for i, r := range rows {
		out[i] = r
		if d, ok := r.Date(); !ok || !d.Equal(day) {
			continue
		}
		edited, err := EditRow(r, changes)
		if err != nil {
			return nil, 0, err
		}
		out[i] = edited
		n++
	}
	return out, n, nil
}
