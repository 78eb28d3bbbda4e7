package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Month-first beats day-first for ambiguous
// slash dates since that is what the sheet has always held.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/06",
	"02-01-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
}

// ParseDate reads a ProductionDate cell. Time-of-day noise is discarded and
// the result is midnight UTC of the calendar day the cell names. Numeric cells
// in the range a spreadsheet uses for date serials are decoded as such.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		// 1954..2119; keeps bare years and counts out.
		if serial >= 20000 && serial <= 80000 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return Day(t), true
			}
		}
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to the calendar day it falls on in its own location and
// returns that day at midnight UTC, so dates compare with ==.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// YearStart is January 1 of t's year.
func YearStart(t time.Time) time.Time {
	return now.With(Day(t)).BeginningOfYear()
}

// MonthStart is the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return now.With(Day(t)).BeginningOfMonth()
}

var mondayWeeks = &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}

// WeekStart is the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	return mondayWeeks.With(Day(t)).BeginningOfWeek()
}

// ParseCount coerces a numeric cell to a non-negative int. Blank, malformed,
// negative or non-finite values read as zero; fractional values truncate.
func ParseCount(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ParseDowntime reads an IssueResolutionTotal cell written as H:MM:SS or
// M:SS. Anything else, including negative parts, is rejected.
func ParseDowntime(s string) (time.Duration, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		// Atoi, not cast: cast treats a leading zero as octal and "08" fails.
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		nums[i] = n
	}

	switch len(nums) {
	case 3:
		return time.Duration(nums[0])*time.Hour +
			time.Duration(nums[1])*time.Minute +
			time.Duration(nums[2])*time.Second, true
	case 2:
		return time.Duration(nums[0])*time.Minute +
			time.Duration(nums[1])*time.Second, true
	default:
		return 0, false
	}
}

// HoursMinutes renders d as "Xh Ym" for the summary header.
func HoursMinutes(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
}

// CleanMinutes renders a cleaning duration cell.
func CleanMinutes(mins int) string {
	return fmt.Sprintf("%d mins", mins)
}
