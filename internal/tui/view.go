package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"github.com/TINANOROUZI/24hr-stories/internal/strip"
	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	"github.com/TINANOROUZI/24hr-stories/pkg/formatter"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	add      lipgloss.Style
	thumb    lipgloss.Style
	selected lipgloss.Style
	hint     lipgloss.Style
	viewer   lipgloss.Style
	filled   lipgloss.Style
	empty    lipgloss.Style
	status   lipgloss.Style
}

func newStyles() styles {
	bubble := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		add:      bubble.BorderForeground(lipgloss.Color("205")).Bold(true),
		thumb:    bubble.BorderForeground(lipgloss.Color("63")),
		selected: bubble.BorderForeground(lipgloss.Color("214")).Bold(true),
		hint:     lipgloss.NewStyle().Faint(true).Italic(true),
		viewer:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("205")).Padding(1, 2),
		filled:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		empty:    lipgloss.NewStyle().Faint(true),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func (m Model) View() string {
	vm := m.ctrl.View()

	sections := []string{m.renderHeader(vm)}
	if vm.Viewer.Visible {
		sections = append(sections, m.renderViewer(vm.Viewer))
	}
	if m.adding {
		sections = append(sections, "Add: "+m.input+"█")
	}
	if m.status != "" {
		sections = append(sections, m.styles.status.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader draws everything above the viewer.
func (m Model) renderHeader(vm widget.ViewModel) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render("Stories"),
		m.renderStrip(vm.Strip),
		m.styles.hint.Render(fmt.Sprintf("h: archive (%s)  a: add  1-9/enter: open  q: quit", formatter.FormatNumber(vm.ArchiveCount))),
	)
}

func (m Model) renderStrip(v strip.View) string {
	bubbles := []string{m.styles.add.Render(v.Add.Label)}
	for _, th := range v.Thumbs {
		style := m.styles.thumb
		if th.Index == m.cursor {
			style = m.styles.selected
		}
		bubbles = append(bubbles, style.Render(fmt.Sprintf("%d %s", th.Index+1, kindIcon(th.Kind))))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, bubbles...)
	if v.EmptyHint {
		row = lipgloss.JoinHorizontal(lipgloss.Center, row, "  ", m.styles.hint.Render("No stories yet. Press a to add one."))
	}
	return row
}

func (m Model) renderViewer(v widget.ViewerView) string {
	if !v.Open || v.Item == nil {
		return m.styles.viewer.Render(m.styles.hint.Render("closing…"))
	}

	width := max(20, m.width-8)
	item := *v.Item
	now := m.clock.Now()

	lines := []string{
		m.renderSegments(v.Segments, width),
		fmt.Sprintf("%s %d/%d  %s", v.Collection, v.Index+1, v.Total, kindIcon(item.Kind)),
		fmt.Sprintf("%s · %s · %s", item.Kind, formatter.FormatAge(item.CreatedAt, now), formatter.FormatBytes(media.PayloadSize(item.Data))),
	}
	if item.IsArchived() {
		lines = append(lines, "archived "+formatter.FormatAge(*item.ArchivedAt, now))
	} else {
		lines = append(lines, formatter.FormatRemaining(item.CreatedAt, m.retention, now))
	}
	lines = append(lines, m.styles.hint.Render("←/→ navigate  esc close  x remove"))

	return m.styles.viewer.Render(strings.Join(lines, "\n"))
}

// renderSegments draws one bar per item separated by a space, filling each
// proportionally.
func (m Model) renderSegments(segments []playback.Segment, width int) string {
	if len(segments) == 0 {
		return ""
	}
	seg := max(1, (width-(len(segments)-1))/len(segments))

	parts := make([]string, len(segments))
	for i, s := range segments {
		filled := int(math.Round(s.Fill / 100 * float64(seg)))
		filled = max(0, min(seg, filled))
		parts[i] = m.styles.filled.Render(strings.Repeat("━", filled)) +
			m.styles.empty.Render(strings.Repeat("─", seg-filled))
	}
	return strings.Join(parts, " ")
}

func kindIcon(k domain.Kind) string {
	if k == domain.KindVideo {
		return "▶"
	}
	return "▣"
}
