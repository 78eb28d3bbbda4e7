// Package ledger holds the production ledger model: the wide row layout the
// shared sheet uses, tolerant readers for its cells, year-to-date aggregation
// and the pure compose/upsert/delete operations that produce the next table.
package ledger

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Column names as they appear in the sheet header.
const (
	ColDate            = "ProductionDate"
	ColJobs            = "NoOfJobs"
	ColTrials          = "NoOfTrials"
	ColDailyProduction = "DailyProductionTotal"
	ColWeekProduction  = "WeeklyProductionTotal"
	ColMonthProduction = "MonthlyProductionTotal"
	ColYearProduction  = "YearlyProductionTotal"
	ColYtdJobs         = "YTD_Jobs_Total"
	ColCleanAm         = "CleanMachineAm"
	ColCleanPm         = "CleanMachinePm"
	ColCleanTotal      = "CleanMachineTotal"
	ColDowntime        = "IssueResolutionTotal"
	ColTempDate        = "TempDate"
)

// IssueSlots is the number of ProductionIssues_N columns.
const IssueSlots = 10

// NoIssue pads unused issue slots.
const NoIssue = "NoIssue"

// DefaultDateLayout is how ProductionDate is written unless configured
// otherwise. The shared sheet has always used US month-first dates.
const DefaultDateLayout = "01/02/2006"

const isoDate = "2006-01-02"

// WeekdayColumns lists the indicator columns, Monday first.
var WeekdayColumns = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Columns is every declared column in header order.
var Columns = declaredColumns()

var declared = func() map[string]bool {
	m := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		m[c] = true
	}
	return m
}()

func declaredColumns() []string {
	cols := []string{
		ColDate, ColJobs, ColTrials, ColDailyProduction,
		ColWeekProduction, ColMonthProduction, ColYearProduction,
		ColYtdJobs, ColCleanAm, ColCleanPm, ColCleanTotal,
		ColDowntime,
	}
	for i := 1; i <= IssueSlots; i++ {
		cols = append(cols, IssueColumn(i))
	}
	cols = append(cols, WeekdayColumns[:]...)
	return append(cols, ColTempDate)
}

// IssueColumn returns the column for the 1-based issue slot n.
func IssueColumn(n int) string {
	return "ProductionIssues_" + strconv.Itoa(n)
}

// WeekdayColumn returns the indicator column for t's day of week.
func WeekdayColumn(t time.Time) string {
	wd := int(t.Weekday())
	if wd == 0 { // Sunday -> 7
		wd = 7
	}
	return WeekdayColumns[wd-1]
}

// DefaultCell is the blank value a declared column takes before a form
// populates it. Counter-like columns get "0"; everything else is empty.
func DefaultCell(col string) string {
	if strings.Contains(col, "Total") || strings.Contains(col, "NoOf") {
		return "0"
	}
	return ""
}

// Row is one ledger row as the store sees it: column name to cell text.
// Rows read back from a store may miss declared columns or carry extra ones.
type Row map[string]string

// Date parses ProductionDate. ok is false for blank or malformed cells.
func (r Row) Date() (time.Time, bool) {
	return ParseDate(r[ColDate])
}

// Int coerces a numeric cell, treating anything unparseable as zero.
func (r Row) Int(col string) int {
	return ParseCount(r[col])
}

// Issues returns the ten issue slots in order. Missing cells come back empty.
func (r Row) Issues() [IssueSlots]string {
	var out [IssueSlots]string
	for i := range out {
		out[i] = strings.TrimSpace(r[IssueColumn(i+1)])
	}
	return out
}

// Clone returns a copy that shares no storage with r.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Normalize returns a copy of r in which every declared column is present.
// Missing cells take DefaultCell; extra columns are kept.
func Normalize(r Row) Row {
	c := r.Clone()
	for _, col := range Columns {
		if _, ok := c[col]; !ok {
			c[col] = DefaultCell(col)
		}
	}
	return c
}

// Header returns the declared columns followed by any extra columns that
// appear in rows, sorted by name.
func Header(rows []Row) []string {
	extra := map[string]bool{}
	for _, r := range rows {
		for k := range r {
			if !declared[k] {
				extra[k] = true
			}
		}
	}
	names := make([]string, 0, len(extra))
	for k := range extra {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]string, 0, len(Columns)+len(names))
	out = append(out, Columns...)
	return append(out, names...)
}

// FromCells builds a Row from a header and a positional record, as tabular
// stores return them. Header cells are trimmed; blank header cells and cells
// beyond the header are dropped.
func FromCells(header, cells []string) Row {
	r := make(Row, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if i < len(cells) {
			r[h] = cells[i]
		} else {
			r[h] = ""
		}
	}
	return r
}

// Cells renders r in header order, normalized so no declared column is absent.
func (r Row) Cells(header []string) []string {
	n := Normalize(r)
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = n[h]
	}
	return out
}
