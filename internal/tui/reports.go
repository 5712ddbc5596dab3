package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskhub/internal/state"
)

type reportMode int

const (
	reportCounts reportMode = iota
	reportPercent
)

// reportsModel charts completion per category. The chart is rebuilt from
// the hub whenever the view is shown or the board changes.
type reportsModel struct {
	sess   *session
	width  int
	height int

	mode  reportMode
	rows  []state.CategoryStats
	total state.Stats

	chart barchart.Model
}

func newReportsModel(sess *session) reportsModel {
	return reportsModel{
		sess:  sess,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) refresh() reportsModel {
	r.rows = r.sess.hub.StatsByCategory()
	r.total = state.Summarize(r.sess.hub.Tasks())
	r.buildChart()
	return r
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg, opDoneMsg:
		return r.refresh(), nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Mode) {
			if r.mode == reportCounts {
				r.mode = reportPercent
			} else {
				r.mode = reportCounts
			}
			r.buildChart()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, row := range r.rows {
		label := truncate(row.Category.Name, 10)
		if !row.Known {
			label = truncate(fmt.Sprintf("#%d?", row.Category.ID), 10)
		}

		var values []barchart.BarValue
		if r.mode == reportPercent {
			values = []barchart.BarValue{{Name: "Complete %", Value: float64(row.Percentage), Style: percentBarStyle}}
		} else {
			values = []barchart.BarValue{
				{Name: "Done", Value: float64(row.Completed), Style: doneBarStyle},
				{Name: "Open", Value: float64(row.Total - row.Completed), Style: remainingBarStyle},
			}
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	if len(bars) > 0 {
		r.chart.PushAll(bars)
	}
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	countsTab := inactiveTabStyle.Render("Counts")
	percentTab := inactiveTabStyle.Render("Percent")
	if r.mode == reportCounts {
		countsTab = activeTabStyle.Render("Counts")
	} else {
		percentTab = activeTabStyle.Render("Percent")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, countsTab, percentTab)

	overall := mutedStyle.Render(fmt.Sprintf("%d/%d complete (%d%%)", r.total.Completed, r.total.Total, r.total.Percentage))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", overall,
	)

	if len(r.rows) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  No categories yet"),
		))
	}

	legend := "  " + doneBarStyle.Render("■") + " done  " + remainingBarStyle.Render("■") + " open"
	if r.mode == reportPercent {
		legend = "  " + percentBarStyle.Render("■") + " complete %"
	}

	nav := mutedStyle.Render("  m: counts/percent")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %6s %6s %8s", "Category", "Done", "Total", "Percent")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 47))))

	for _, row := range r.rows {
		name := row.Category.Name
		style := normalItemStyle
		if !row.Known {
			name = fmt.Sprintf("%s (deleted)", name)
			style = warningStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("  %-24s %6d %6d %7d%%",
			truncate(name, 24), row.Completed, row.Total, row.Percentage,
		)))
	}
	return strings.Join(rows, "\n")
}
