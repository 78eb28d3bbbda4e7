package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rezmoss/prodlog/internal/ledger"
	"github.com/rezmoss/prodlog/internal/session"
)

// Form field order.
const (
	fieldDate = iota
	fieldJobs
	fieldProduction
	fieldTrials
	fieldAm
	fieldPm
	fieldIssues
	fieldCount
)

var errTimerLocked = errors.New("timer is locked while the entry is saving")

var fieldLabels = [fieldCount]string{
	"Date",
	"Jobs",
	"Production",
	"Trials",
	"Clean AM (mins)",
	"Clean PM (mins)",
	"Issues",
}

// IssueSeparator splits the issues field. Some category names contain
// commas, so a semicolon is used.
const IssueSeparator = ";"

type clockMsg time.Time

type submittedMsg struct {
	sess session.Session
	row  ledger.Row
	err  error
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// Entry is the operator's session screen: the downtime stopwatch and the
// day's form.
type Entry struct {
	ctx        context.Context
	svc        *session.Service
	sess       session.Session
	defaultAm  int
	defaultPm  int
	dateLayout string

	inputs  [fieldCount]textinput.Model
	focus   int
	snap    session.Snapshot
	preview session.Preview
	busy    bool
	status  string
	err     error
	now     time.Time
}

// NewEntry builds the session screen. am and pm prefill the cleaning fields.
func NewEntry(ctx context.Context, svc *session.Service, am, pm int) Entry {
	m := Entry{
		ctx:        ctx,
		svc:        svc,
		sess:       session.New(),
		defaultAm:  am,
		defaultPm:  pm,
		dateLayout: svc.DateLayout(),
		now:        svc.Now(),
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.inputs[fieldDate].Placeholder = "today"
	m.inputs[fieldIssues].Placeholder = "names or numbers from `prodlog issues`, separated by ;"
	m.inputs[fieldIssues].Width = 60
	m.resetForm()
	return m
}

// Session is the current operator session.
func (m Entry) Session() session.Session { return m.sess }

func (m *Entry) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.inputs[fieldDate].SetValue(m.now.Format(m.dateLayout))
	m.inputs[fieldAm].SetValue(strconv.Itoa(m.defaultAm))
	m.inputs[fieldPm].SetValue(strconv.Itoa(m.defaultPm))
	m.focus = fieldJobs
	m.inputs[m.focus].Focus()
}

func (m Entry) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.ctx, m.svc), clockCmd(), textinput.Blink)
}

func (m Entry) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.moveFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil
		case "ctrl+t", "ctrl+r":
			// The submit in flight carries the timer and replaces it when it lands.
			if m.busy {
				m.err = errTimerLocked
				return m, nil
			}
			if msg.String() == "ctrl+t" {
				m.toggleTimer()
				return m, nil
			}
			m.sess = session.ResetTimer(m.sess)
			m.status, m.err = "Timer reset", nil
			return m, nil
		case "enter":
			return m.submit()
		}
	case clockMsg:
		m.now = time.Time(msg)
		return m, clockCmd()
	case loadedMsg:
		m.snap = session.Snapshot(msg)
		m.refreshPreview()
		return m, nil
	case submittedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.sess = msg.sess
		m.err = nil
		m.status = fmt.Sprintf("Saved %s: %s produced, YTD %s, downtime %s",
			msg.row[ledger.ColDate],
			commaCell(msg.row[ledger.ColDailyProduction]),
			commaCell(msg.row[ledger.ColYearProduction]),
			msg.row[ledger.ColDowntime])
		m.resetForm()
		return m, loadCmd(m.ctx, m.svc)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.focus == fieldDate {
		m.refreshPreview()
	}
	return m, cmd
}

func (m *Entry) moveFocus(delta int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
	m.refreshPreview()
}

func (m *Entry) toggleTimer() {
	var err error
	if m.sess.Timer.Running() {
		m.sess, err = session.StopTimer(m.sess, m.svc.Now())
	} else {
		m.sess, err = session.StartTimer(m.sess, m.svc.Now())
	}
	m.err = err
}

func (m *Entry) refreshPreview() {
	d, ok := parseFormDate(m.inputs[fieldDate].Value(), m.dateLayout, m.now)
	if !ok {
		m.preview = session.Preview{}
		return
	}
	m.preview = m.svc.Preview(m.snap, d)
}

func (m Entry) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	f, err := ParseForm(m.values(), m.dateLayout, m.now)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.busy = true
	m.status, m.err = "Saving...", nil

	ctx, svc, sess := m.ctx, m.svc, m.sess
	return m, func() tea.Msg {
		next, row, err := svc.Submit(ctx, sess, f)
		return submittedMsg{sess: next, row: row, err: err}
	}
}

func (m Entry) values() [fieldCount]string {
	var v [fieldCount]string
	for i := range m.inputs {
		v[i] = m.inputs[i].Value()
	}
	return v
}

func (m Entry) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Production Entry") + "\n\n")

	timerState := alertStyle.Render("● RUNNING")
	if !m.sess.Timer.Running() {
		timerState = footerStyle.Render("○ stopped")
	}
	b.WriteString(boxStyle.Render(fmt.Sprintf(
		"ISSUE DOWNTIME\n\n%s  %s",
		progressStyle.Render(m.sess.Timer.Display(m.now)),
		timerState,
	)) + "\n")

	for i, in := range m.inputs {
		label := fmt.Sprintf("%-16s", fieldLabels[i])
		if i == m.focus {
			label = focusedStyle.Render(label)
		}
		b.WriteString(label + " " + in.View() + "\n")
	}
	b.WriteString("\n")

	base := m.preview.Baseline
	b.WriteString(fmt.Sprintf("YTD before this day: production %s • jobs %s • trials %s\n",
		humanize.Comma(int64(base.Year.Production)),
		humanize.Comma(int64(base.Year.Jobs)),
		humanize.Comma(int64(base.Year.Trials))))

	if m.snap.Err != nil {
		b.WriteString(warnStyle.Render("⚠ "+m.snap.Err.Error()+"; totals may be incomplete") + "\n")
	}
	if m.preview.Duplicate {
		b.WriteString(warnStyle.Render("⚠ an entry for this date already exists; it will not be saved") + "\n")
	}
	switch {
	case m.err != nil:
		b.WriteString(alertStyle.Render("✗ "+describeError(m.err)) + "\n")
	case m.status != "":
		b.WriteString(goodStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n" + footerStyle.Render(
		"tab/shift+tab move • enter submit • ctrl+t start/stop timer • ctrl+r reset timer • esc quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func describeError(err error) string {
	switch {
	case errors.Is(err, session.ErrDuplicateDate):
		return "already recorded: " + err.Error()
	case errors.Is(err, session.ErrReadFailed):
		return "not saved, the ledger could not be read: " + err.Error()
	}
	return err.Error()
}

func commaCell(s string) string {
	return humanize.Comma(int64(ledger.ParseCount(s)))
}

// parseFormDate tries layout before the sheet's usual formats so a
// day-first layout round-trips through the prefilled field.
func parseFormDate(s, layout string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "today") {
		return ledger.Day(now), true
	}
	if layout != "" {
		if t, err := time.Parse(layout, s); err == nil {
			return ledger.Day(t), true
		}
	}
	return ledger.ParseDate(s)
}

// ParseForm turns the raw field values into a submission. Empty numeric
// fields count as zero.
func ParseForm(v [fieldCount]string, layout string, now time.Time) (session.Form, error) {
	var f session.Form
	d, ok := parseFormDate(v[fieldDate], layout, now)
	if !ok {
		return f, fmt.Errorf("date %q not recognised", v[fieldDate])
	}
	f.Date = d

	for _, n := range []struct {
		field int
		dst   *int
	}{
		{fieldJobs, &f.Jobs},
		{fieldProduction, &f.Production},
		{fieldTrials, &f.Trials},
		{fieldAm, &f.AmMinutes},
		{fieldPm, &f.PmMinutes},
	} {
		s := strings.ReplaceAll(strings.TrimSpace(v[n.field]), ",", "")
		if s == "" {
			continue
		}
		x, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("%s: %q is not a whole number", strings.ToLower(fieldLabels[n.field]), v[n.field])
		}
		*n.dst = x
	}

	issues, err := ParseIssues(v[fieldIssues])
	if err != nil {
		return f, err
	}
	f.Issues = issues
	return f, nil
}

// ParseIssues splits raw on IssueSeparator and resolves each part with
// ledger.ResolveIssue.
func ParseIssues(raw string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(raw, IssueSeparator) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, err := ledger.ResolveIssue(part)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}
