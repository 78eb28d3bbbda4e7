package ledger

import (
	"sort"
	"time"
)

// Ytd is a set of sums over a date window.
type Ytd struct {
	Production int
	Jobs       int
	Trials     int
}

// ComputeYtdMetrics sums production, jobs and trials over rows dated from
// January 1 of target's year up to but excluding target itself. Rows whose
// date does not parse are ignored.
func ComputeYtdMetrics(target time.Time, rows []Row) Ytd {
	return sumWindow(YearStart(target), Day(target), rows)
}

func sumWindow(from, to time.Time, rows []Row) Ytd {
	var out Ytd
	for _, r := range rows {
		d, ok := r.Date()
		if !ok || d.Before(from) || !d.Before(to) {
			continue
		}
		out.Production += r.Int(ColDailyProduction)
		out.Jobs += r.Int(ColJobs)
		out.Trials += r.Int(ColTrials)
	}
	return out
}

// Baseline is everything a new row's derived totals are built on.
type Baseline struct {
	Year  Ytd
	Month Ytd
	Week  Ytd
}

// ComputeBaseline returns the year, month and week sums preceding date.
func ComputeBaseline(date time.Time, rows []Row) Baseline {
	day := Day(date)
	return Baseline{
		Year:  sumWindow(YearStart(day), day, rows),
		Month: sumWindow(MonthStart(day), day, rows),
		Week:  sumWindow(WeekStart(day), day, rows),
	}
}

// RecordExistsForDate reports whether any row is dated on date's calendar day.
func RecordExistsForDate(date time.Time, rows []Row) bool {
	day := Day(date)
	for _, r := range rows {
		if d, ok := r.Date(); ok && d.Equal(day) {
			return true
		}
	}
	return false
}

// ComputeYtdDowntime adds up IssueResolutionTotal for every row dated in year.
// Cells that are not H:MM:SS or M:SS are skipped.
func ComputeYtdDowntime(rows []Row, year int) time.Duration {
	var total time.Duration
	for _, r := range rows {
		d, ok := r.Date()
		if !ok || d.Year() != year {
			continue
		}
		if v, ok := ParseDowntime(r[ColDowntime]); ok {
			total += v
		}
	}
	return total
}

// YearTotals are the header metrics for one calendar year.
type YearTotals struct {
	Year       int
	Entries    int
	Production int
	Jobs       int
	Trials     int
	Downtime   time.Duration
}

// ComputeYearTotals sums every row dated in year.
func ComputeYearTotals(rows []Row, year int) YearTotals {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	ytd := sumWindow(start, start.AddDate(1, 0, 0), rows)

	entries := 0
	for _, r := range rows {
		if d, ok := r.Date(); ok && d.Year() == year {
			entries++
		}
	}
	return YearTotals{
		Year:       year,
		Entries:    entries,
		Production: ytd.Production,
		Jobs:       ytd.Jobs,
		Trials:     ytd.Trials,
		Downtime:   ComputeYtdDowntime(rows, year),
	}
}

// TargetProgress is production as a percentage of the annual target. A
// non-positive target yields 0.
func TargetProgress(production, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(production) / float64(target) * 100
}

// IssueCount is how many days in a year carried one issue tag.
type IssueCount struct {
	Issue string
	Count int
}

// IssueFrequency counts issue tags used in year, ignoring NoIssue and blanks.
// The result is ordered by count, most frequent first, then by name.
func IssueFrequency(rows []Row, year int) []IssueCount {
	counts := map[string]int{}
	for _, r := range rows {
		d, ok := r.Date()
		if !ok || d.Year() != year {
			continue
		}
		for _, tag := range r.Issues() {
			if tag == "" || tag == NoIssue {
				continue
			}
			counts[tag]++
		}
	}

	out := make([]IssueCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, IssueCount{Issue: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Issue < out[j].Issue
	})
	return out
}

// DailyPoint is one day's production for plotting.
type DailyPoint struct {
	Date       time.Time
	Production int
}

// DailySeries returns the rows dated in year as points sorted by date.
func DailySeries(rows []Row, year int) []DailyPoint {
	var out []DailyPoint
	for _, r := range rows {
		d, ok := r.Date()
		if !ok || d.Year() != year {
			continue
		}
		out = append(out, DailyPoint{Date: d, Production: r.Int(ColDailyProduction)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// RowsForYear returns rows dated in year sorted by date. Rows that fail to
// parse are left out.
func RowsForYear(rows []Row, year int) []Row {
	type dated struct {
		d time.Time
		r Row
	}
	var ds []dated
	for _, r := range rows {
		if d, ok := r.Date(); ok && d.Year() == year {
			ds = append(ds, dated{d, r})
		}
	}
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].d.Before(ds[j].d) })

	out := make([]Row, len(ds))
	for i, x := range ds {
		out[i] = x.r
	}
	return out
}
