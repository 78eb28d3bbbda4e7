package ledger

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecordWeekdayIndicator(t *testing.T) {
	// 2026-02-11 is a Wednesday.
	r := BuildRecord(Entry{Date: date(2026, 2, 11)}, Baseline{})

	ones := 0
	for _, col := range WeekdayColumns {
		if r[col] == "1" {
			ones++
		}
	}
	assert.Equal(t, 1, ones)
	assert.Equal(t, "1", r["Wednesday"])
	assert.Equal(t, "", r["Monday"])
	assert.Equal(t, "", r["Sunday"])

	assert.Equal(t, "1", BuildRecord(Entry{Date: date(2026, 2, 15)}, Baseline{})["Sunday"])
}

func TestBuildRecordNoIssues(t *testing.T) {
	r := BuildRecord(Entry{Date: date(2026, 2, 11)}, Baseline{})
	for i := 1; i <= IssueSlots; i++ {
		assert.Equal(t, NoIssue, r[IssueColumn(i)], "slot %d", i)
	}
}

func TestBuildRecordTruncatesIssues(t *testing.T) {
	var tags []string
	for i := 1; i <= 12; i++ {
		tags = append(tags, fmt.Sprintf("tag-%d", i))
	}
	r := BuildRecord(Entry{Date: date(2026, 2, 11), Issues: tags}, Baseline{})
	for i := 1; i <= IssueSlots; i++ {
		assert.Equal(t, fmt.Sprintf("tag-%d", i), r[IssueColumn(i)])
	}
	assert.NotContains(t, r, IssueColumn(11))
	for _, v := range r {
		assert.NotEqual(t, "tag-11", v)
		assert.NotEqual(t, "tag-12", v)
	}
}

func TestBuildRecordPadsIssues(t *testing.T) {
	r := BuildRecord(Entry{Date: date(2026, 2, 11), Issues: []string{"Meeting", " ", "UV lamp issues"}}, Baseline{})
	assert.Equal(t, "Meeting", r[IssueColumn(1)])
	assert.Equal(t, "UV lamp issues", r[IssueColumn(2)])
	assert.Equal(t, NoIssue, r[IssueColumn(3)])
	assert.Equal(t, NoIssue, r[IssueColumn(10)])
}

func TestBuildRecordFields(t *testing.T) {
	e := Entry{
		Date:       date(2026, 2, 15),
		Jobs:       3,
		Production: 1200,
		Trials:     1,
		AmMinutes:  45,
		PmMinutes:  30,
		Downtime:   "1:02:03",
	}
	b := Baseline{
		Year:  Ytd{Production: 1500, Jobs: 3},
		Month: Ytd{Production: 500},
		Week:  Ytd{Production: 0},
	}
	r := BuildRecord(e, b)

	assert.Len(t, r, len(Columns))
	assert.Equal(t, "02/15/2026", r[ColDate])
	assert.Equal(t, "2026-02-15", r[ColTempDate])
	assert.Equal(t, "3", r[ColJobs])
	assert.Equal(t, "1", r[ColTrials])
	assert.Equal(t, "1200", r[ColDailyProduction])
	assert.Equal(t, "2700", r[ColYearProduction])
	assert.Equal(t, "6", r[ColYtdJobs])
	assert.Equal(t, "1700", r[ColMonthProduction])
	assert.Equal(t, "1200", r[ColWeekProduction])
	assert.Equal(t, "45 mins", r[ColCleanAm])
	assert.Equal(t, "30 mins", r[ColCleanPm])
	assert.Equal(t, "75 mins", r[ColCleanTotal])
	assert.Equal(t, "1:02:03", r[ColDowntime])

	d, ok := r.Date()
	require.True(t, ok)
	assert.Equal(t, date(2026, 2, 15), d)
}

func TestBuildRecordDateLayout(t *testing.T) {
	r := BuildRecord(Entry{Date: date(2026, 2, 15), DateLayout: "2006-01-02"}, Baseline{})
	assert.Equal(t, "2026-02-15", r[ColDate])
}

func TestEntryValidate(t *testing.T) {
	require.NoError(t, Entry{Issues: []string{"Meeting", ""}}.Validate())

	err := Entry{Jobs: -1}.Validate()
	assert.True(t, errors.Is(err, ErrNegativeValue))

	err = Entry{Issues: []string{"Gremlins"}}.Validate()
	assert.True(t, errors.Is(err, ErrUnknownIssue))
}

func TestUpsert(t *testing.T) {
	r := Row{ColDate: "2026-02-15"}
	assert.Equal(t, []Row{r}, Upsert(nil, r))

	existing := []Row{{ColDate: "2026-02-14"}}
	got := Upsert(existing, r)
	assert.Len(t, got, 2)
	assert.Len(t, existing, 1, "input must not be modified")

	// No dedup: the caller owns that check.
	assert.Len(t, Upsert(got, r), 3)
}

func TestDeleteByDate(t *testing.T) {
	r1 := Row{ColDate: "2026-02-14"}
	r2 := Row{ColDate: "2026-02-15"}
	assert.Equal(t, []Row{r2}, DeleteByDate([]Row{r1, r2}, date(2026, 2, 14)))

	bad := Row{ColDate: "???"}
	got := DeleteByDate([]Row{bad, Row{ColDate: "02/14/2026 08:00:00"}}, time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, []Row{bad}, got)
}

func TestResolveIssue(t *testing.T) {
	got, err := ResolveIssue(" corona ISSUES ")
	require.NoError(t, err)
	assert.Equal(t, "Corona issues", got)

	got, err = ResolveIssue("0")
	require.NoError(t, err)
	assert.Equal(t, NoIssue, got)

	_, err = ResolveIssue("-1")
	assert.Error(t, err)
	_, err = ResolveIssue("Coffee machine")
	assert.ErrorIs(t, err, ErrUnknownIssue)
}

func TestEditRow(t *testing.T) {
	r := Row{ColDate: "02/14/2026", ColDailyProduction: "500", "Operator": "night"}

	got, err := EditRow(r, map[string]string{
		ColDailyProduction: "1,200",
		ColDowntime:        "0:20:00",
		IssueColumn(2):     "uv lamp issues",
		IssueColumn(3):     "",
		"Saturday":         "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "1200", got[ColDailyProduction])
	assert.Equal(t, "0:20:00", got[ColDowntime])
	assert.Equal(t, "UV lamp issues", got[IssueColumn(2)])
	assert.Equal(t, NoIssue, got[IssueColumn(3)])
	assert.Equal(t, "1", got["Saturday"])
	assert.Equal(t, "night", got["Operator"])
	assert.Equal(t, "500", r[ColDailyProduction], "input must not be modified")

	for _, tc := range []struct {
		changes map[string]string
		want    error
	}{
		{map[string]string{"Colour": "blue"}, ErrUnknownColumn},
		{map[string]string{ColDate: "2026-02-15"}, ErrProtectedColumn},
		{map[string]string{ColTempDate: "2026-02-15"}, ErrProtectedColumn},
		{map[string]string{ColJobs: "-2"}, ErrNegativeValue},
		{map[string]string{ColJobs: "two"}, ErrInvalidCell},
		{map[string]string{ColDowntime: "ages"}, ErrInvalidCell},
		{map[string]string{IssueColumn(1): "Gremlins"}, ErrUnknownIssue},
		{map[string]string{"Monday": "yes"}, ErrInvalidCell},
	} {
		_, err := EditRow(r, tc.changes)
		assert.ErrorIs(t, err, tc.want, fmt.Sprint(tc.changes))
	}
}

func TestEditByDateLeavesOtherRows(t *testing.T) {
	rows := []Row{
		{ColDate: "2026-02-10", ColDailyProduction: "500", ColYearProduction: "500"},
		{ColDate: "2026-02-11", ColDailyProduction: "700", ColYearProduction: "1200"},
	}

	got, n, err := EditByDate(rows, date(2026, 2, 10), map[string]string{ColDailyProduction: "800"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "800", got[0][ColDailyProduction])
	assert.Equal(t, "500", got[0][ColYearProduction], "own snapshot kept")
	assert.Equal(t, "1200", got[1][ColYearProduction], "later snapshot kept")
	assert.Equal(t, "500", rows[0][ColDailyProduction])

	_, n, err = EditByDate(rows, date(2026, 3, 1), map[string]string{ColJobs: "1"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
