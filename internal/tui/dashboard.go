package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rezmoss/prodlog/internal/ledger"
	"github.com/rezmoss/prodlog/internal/session"
)

type tickMsg time.Time

type loadedMsg session.Snapshot

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadCmd(ctx context.Context, svc *session.Service) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg(svc.Load(ctx))
	}
}

// Dashboard is the read-only reporting view. It reloads the ledger every
// refresh interval.
type Dashboard struct {
	ctx     context.Context
	svc     *session.Service
	target  int
	refresh time.Duration

	snap     session.Snapshot
	loaded   bool
	loadedAt time.Time
	bar      progress.Model
	width    int
	height   int
}

func NewDashboard(ctx context.Context, svc *session.Service, target int, refresh time.Duration) Dashboard {
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return Dashboard{
		ctx:     ctx,
		svc:     svc,
		target:  target,
		refresh: refresh,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

func (m Dashboard) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.ctx, m.svc), tickCmd(m.refresh))
}

func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, loadCmd(m.ctx, m.svc)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case loadedMsg:
		m.snap = session.Snapshot(msg)
		m.loaded = true
		m.loadedAt = m.svc.Now()
	case tickMsg:
		return m, tea.Batch(loadCmd(m.ctx, m.svc), tickCmd(m.refresh))
	}
	return m, nil
}

func (m Dashboard) View() string {
	if m.width == 0 || m.height == 0 || !m.loaded {
		return "Loading..."
	}

	now := m.svc.Now()
	sum := session.Summarize(m.snap, now.Year(), m.target)

	header := headerStyle.Width(m.width).Render(
		fmt.Sprintf("Production Ledger - %s", now.Format("Jan 2, 2006 15:04")),
	)

	leftColWidth := m.width/2 - 3
	rightColWidth := m.width/2 - 3

	barWidth := leftColWidth - 10
	if barWidth < 20 {
		barWidth = 20
	}
	m.bar.Width = barWidth
	ytdBox := boxStyle.Width(leftColWidth).Render(fmt.Sprintf(
		"YTD PRODUCTION %d\n\n%s\n\n%s\n%s",
		sum.Year,
		goodStyle.Render(humanize.Comma(int64(sum.Production))),
		m.bar.ViewAs(clampUnit(sum.Progress/100)),
		progressStyle.Render(formatProgress(sum.Progress, sum.Target)),
	))

	summaryBox := boxStyle.Width(leftColWidth).Render(fmt.Sprintf(
		"SUMMARY\n\n"+
			"Entries:   %s\n"+
			"Jobs:      %s\n"+
			"Trials:    %s\n"+
			"Downtime:  %s",
		humanize.Comma(int64(sum.Entries)),
		humanize.Comma(int64(sum.Jobs)),
		humanize.Comma(int64(sum.Trials)),
		ledger.HoursMinutes(sum.Downtime),
	))

	status := goodStyle.Render("● ledger loaded") +
		fmt.Sprintf(" at %s", m.loadedAt.Format("15:04:05"))
	if m.snap.Err != nil {
		status = alertStyle.Render("● " + m.snap.Err.Error())
	}
	statusBox := boxStyle.Width(leftColWidth).Render("STATUS\n\n" + status)

	leftColumn := lipgloss.JoinVertical(lipgloss.Left, ytdBox, summaryBox, statusBox)

	available := m.height - 8
	recentHeight := available * 2 / 3
	recent := recentBox(ledger.DailySeries(m.snap.Rows, now.Year()), rightColWidth, recentHeight)
	issues := issuesBox(sum.Issues, rightColWidth, available-recentHeight)
	rightColumn := lipgloss.JoinVertical(lipgloss.Left, recent, issues)

	content := lipgloss.JoinHorizontal(lipgloss.Top, leftColumn, rightColumn)

	footer := footerStyle.Width(m.width).Render(fmt.Sprintf(
		"Press 'q' to quit • 'r' to reload • Updates every %s", m.refresh))

	full := lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
	if h := lipgloss.Height(full); h < m.height {
		full += strings.Repeat("\n", m.height-h-1)
	}
	return full
}

// recentBox lists the latest days that fit in maxHeight, each with a bar
// scaled to the best day shown.
func recentBox(points []ledger.DailyPoint, width, maxHeight int) string {
	text := "RECENT PRODUCTION\n\n"
	if len(points) == 0 {
		text += footerStyle.Render("no entries this year")
		return boxStyle.Width(width).Render(text)
	}

	maxEntries := maxHeight - 6
	if maxEntries < 5 {
		maxEntries = 5
	}
	if len(points) > maxEntries {
		points = points[len(points)-maxEntries:]
	}

	best := 0
	for _, p := range points {
		best = max(best, p.Production)
	}
	barWidth := width - 32
	if barWidth < 5 {
		barWidth = 5
	}
	for _, p := range points {
		pct := 0.0
		if best > 0 {
			pct = float64(p.Production) / float64(best) * 100
		}
		text += fmt.Sprintf("%s %s %10s\n",
			p.Date.Format("Mon Jan 02"),
			progressBar(pct, barWidth),
			humanize.Comma(int64(p.Production)))
	}
	return boxStyle.Width(width).Render(strings.TrimRight(text, "\n"))
}

func issuesBox(issues []ledger.IssueCount, width, maxHeight int) string {
	text := "TOP ISSUES\n\n"
	if len(issues) == 0 {
		text += goodStyle.Render("no issues recorded")
		return boxStyle.Width(width).Render(text)
	}
	limit := maxHeight - 6
	if limit < 3 {
		limit = 3
	}
	if len(issues) > limit {
		issues = issues[:limit]
	}
	for _, ic := range issues {
		text += fmt.Sprintf("%s %4d  %s\n", warnStyle.Render("●"), ic.Count, ic.Issue)
	}
	return boxStyle.Width(width).Render(strings.TrimRight(text, "\n"))
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
