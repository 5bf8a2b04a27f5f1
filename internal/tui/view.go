package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/mindbff/backend/internal/affirmation"
	"github.com/zhouzirui/mindbff/backend/internal/model/chat"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
	moodService "github.com/zhouzirui/mindbff/backend/internal/service/mood"
	progressService "github.com/zhouzirui/mindbff/backend/internal/service/progress"
	voiceService "github.com/zhouzirui/mindbff/backend/internal/service/voice"
	"github.com/zhouzirui/mindbff/backend/internal/shell"
)

// chartRows is the height of a full (Great) bar.
const chartRows = 5

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mindBFF"))
	b.WriteString("  ")
	b.WriteString(affirmationStyle.Render(affirmation.Pick(m.deps.Now())))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if !m.deps.Settings.Keys().Complete() {
		b.WriteString(hintStyle.Render("Some API keys are missing. Run `mindbff keys set` to add them."))
		b.WriteString("\n\n")
	}

	switch m.deps.Navigator.Active() {
	case shell.Journal:
		b.WriteString(m.viewJournal())
	case shell.Mood:
		b.WriteString(m.viewMood())
	case shell.Progress:
		b.WriteString(m.viewProgress())
	default:
		b.WriteString(m.viewTalk())
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, tab := range m.deps.Navigator.Tabs() {
		if tab.Active {
			tabs = append(tabs, activeTabStyle.Render(tab.Title))
		} else {
			tabs = append(tabs, tabStyle.Render(tab.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewTalk() string {
	var b strings.Builder
	b.WriteString(m.history.View())
	b.WriteString("\n")
	if m.thinking {
		b.WriteString(m.spinner.View() + " thinking...\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(renderVoice(m.voice))
	return b.String()
}

func renderVoice(snap voiceService.Snapshot) string {
	line := "🎙 " + snap.Label
	if snap.State == "" {
		line = "🎙 " + voiceService.StatusLabel(voiceService.StateIdle)
	}
	if snap.LastMessage != "" {
		line += "  " + assistantStyle.Render("“"+snap.LastMessage+"”")
	}
	if snap.Error != "" {
		line += "\n" + errorStyle.Render(snap.Error)
	}
	return line
}

func (m Model) viewJournal() string {
	var b strings.Builder
	b.WriteString(m.journal.View())
	b.WriteString("\n")
	if m.analyzing {
		b.WriteString(m.spinner.View() + " Analyzing...\n")
	}
	if summary := m.deps.Journal.Summary(); summary != "" {
		b.WriteString("\n")
		b.WriteString(insightStyle.Render("✨ AI Insights"))
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(m.renderMarkdown(summary)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewMood() string {
	var b strings.Builder
	b.WriteString("How are you feeling today?\n\n")

	var faces []string
	for _, info := range mood.Levels() {
		face := info.Emoji + " " + info.Label
		if info.Value == m.moodCursor {
			faces = append(faces, selectedStyle.Render(face))
		} else {
			faces = append(faces, face)
		}
	}
	b.WriteString(strings.Join(faces, "   "))
	b.WriteString("\n\n")

	title := "This week"
	if m.weekSample {
		title += " (sample)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(renderChart(m.week))
	return b.String()
}

// renderChart draws one column per weekday, scaled by the bar height percentage.
func renderChart(samples []mood.Sample) string {
	if len(samples) == 0 {
		return ""
	}
	heights := make([]int, len(samples))
	for i, s := range samples {
		if s.Level != nil {
			heights[i] = moodService.BarHeightPercent(*s.Level) * chartRows / 100
		}
	}

	var b strings.Builder
	for row := chartRows; row >= 1; row-- {
		for i := range samples {
			if heights[i] >= row {
				b.WriteString(barStyle.Render(" ███ "))
			} else {
				b.WriteString(emptyBarStyle.Render("  ·  "))
			}
		}
		b.WriteString("\n")
	}
	for _, s := range samples {
		b.WriteString(fmt.Sprintf(" %-4s", s.Day))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewProgress() string {
	return renderReport(m.report)
}

func renderReport(r progressService.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your Progress"))
	b.WriteString("\n\n")
	if r.Empty || r.To.IsZero() {
		b.WriteString(cardStyle.Render(progressService.Encouragement))
		return b.String()
	}

	lines := []string{
		fmt.Sprintf("Journal entries: %d", r.JournalEntries),
		fmt.Sprintf("Moods logged:    %d", r.MoodsLogged),
	}
	if r.AverageMood != nil && r.AverageLevel != nil {
		lines = append(lines, fmt.Sprintf("Average mood:    %.1f %s %s", *r.AverageMood, r.AverageLevel.Emoji, r.AverageLevel.Label))
	}
	if r.TopTone != "" {
		lines = append(lines, "Most common tone: "+r.TopTone)
	}
	b.WriteString(cardStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(r.Headline)
	if !r.Durable {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("History is kept for this session only."))
	}
	return b.String()
}

func renderTranscript(messages []chat.Message, width int) string {
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	var parts []string
	for _, msg := range messages {
		stamp := msg.Timestamp.Format("15:04")
		if msg.Role == chat.RoleUser {
			parts = append(parts, userStyle.Render("You · "+stamp)+"\n"+wrap.Render(msg.Content))
		} else {
			parts = append(parts, hintStyle.Render("mindBFF · "+stamp)+"\n"+assistantStyle.Inherit(wrap).Render(msg.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) help() string {
	common := "tab/shift+tab switch • esc quit"
	switch m.deps.Navigator.Active() {
	case shell.Journal:
		return "ctrl+r analyze • ctrl+s save • " + common
	case shell.Mood:
		return "←/→ choose • enter save • s sample week • " + common
	case shell.Progress:
		return common
	default:
		return "enter send • pgup/pgdn scroll • ctrl+t voice on/off • " + common
	}
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer != nil {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return strings.Trim(rendered, "\n")
		}
	}
	return content
}

func hasData(samples []mood.Sample) bool {
	for _, s := range samples {
		if s.Level != nil {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
