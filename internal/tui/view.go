package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/stroop/internal/palette"
)

const patchWidth = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	optionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	stimulusBase = lipgloss.NewStyle().Bold(true)
)

var instructions = map[palette.TestType]string{
	palette.Classic:   "Press the key of the INK COLOR. Ignore what the word says.",
	palette.Reverse:   "Press the key of the WORD. Ignore the ink color.",
	palette.Neutral:   "Press the key of the color of the patch.",
	palette.Emotional: "Press the key of the INK COLOR. Ignore the meaning of the word.",
}

// View implements tea.Model.
func (m *Model) View() string {
	var content, footer string
	switch m.screen {
	case screenWelcome:
		content = m.viewWelcome()
	case screenTrial:
		content = m.viewTrial()
		footer = m.renderFooter()
	default:
		content = m.viewResults()
	}
	if m.width == 0 || m.height == 0 {
		if footer == "" {
			return content
		}
		return content + "\n\n" + footer
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewWelcome() string {
	cfg := m.config
	lines := []string{
		titleStyle.Render("Stroop Test"),
		"",
		field("User", cfg.User),
		field("Test", "< "+cfg.TestType.Title()+" >"),
		field("Difficulty", fmt.Sprintf("< %s >  %d colors, %.1fs per trial",
			cfg.Difficulty, len(cfg.Difficulty.Colors()), cfg.Difficulty.TimeLimit().Seconds())),
		field("Trials", fmt.Sprintf("%d", cfg.Trials)),
		"",
		instructions[cfg.TestType],
	}
	if p, ok := m.profile(); ok {
		lines = append(lines, "", labelStyle.Render(fmt.Sprintf(
			"%d tests so far · average %.1f%% · best %.1f%%", p.TotalTests, p.AvgAccuracy, p.BestAccuracy)))
	}
	if m.startErr != nil {
		lines = append(lines, "", errorStyle.Render(m.startErr.Error()))
	}
	lines = append(lines, "", footerStyle.Render("enter start · ←/→ test · ↑/↓ difficulty · q quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) viewTrial() string {
	if m.pres == nil {
		return ""
	}
	trial := m.pres.Trial()
	width := m.contentWidth()
	header := labelStyle.Render(fmt.Sprintf("Trial %d of %d", m.pres.Index()+1, m.sess.Len()))
	options := wrapCells(optionCells(m.options, palette.Key), width, 3)
	return strings.Join([]string{
		header,
		"",
		m.renderStimulus(trial.Word, trial.Color),
		"",
		options,
	}, "\n")
}

// renderStimulus draws the word in its ink color, or a solid patch when
// the trial carries no word.
func (m *Model) renderStimulus(word, color string) string {
	hex := lipgloss.Color(palette.Hex(color))
	if word == "" {
		row := lipgloss.NewStyle().Background(hex).Render(strings.Repeat(" ", patchWidth))
		return strings.Join([]string{row, row, row}, "\n")
	}
	text := centerText(spaced(word), patchWidth)
	return stimulusBase.Foreground(hex).Render(text)
}

func (m *Model) viewResults() string {
	lines := []string{titleStyle.Render("Test Results"), ""}
	if m.hasResult {
		lines = append(lines,
			field("Accuracy", fmt.Sprintf("%.1f%%", m.result.Accuracy)),
			field("Average time", fmt.Sprintf("%.2fs", m.result.AvgTime)),
			field("Rating", m.result.Rating),
		)
		if m.sess != nil {
			lines = append(lines, field("Correct", fmt.Sprintf("%d of %d", m.sess.CorrectCount(), m.sess.Len())))
		}
	} else {
		lines = append(lines, labelStyle.Render("No trials were scored."))
	}
	if p, ok := m.profile(); ok {
		lines = append(lines, "",
			field("Tests taken", fmt.Sprintf("%d", p.TotalTests)),
			field("Overall accuracy", fmt.Sprintf("%.1f%%", p.AvgAccuracy)),
			field("Best accuracy", fmt.Sprintf("%.1f%%", p.BestAccuracy)),
		)
	}
	lines = append(lines, "")
	switch {
	case m.saving:
		lines = append(lines, labelStyle.Render("Saving..."))
	case m.saveErr != nil:
		lines = append(lines, errorStyle.Render("Results were not saved: "+m.saveErr.Error()))
	case m.hasResult:
		lines = append(lines, correctStyle.Render("Results saved."))
	}
	lines = append(lines, "", footerStyle.Render("enter new test · q quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	if m.sess == nil {
		return ""
	}
	segments := []string{
		fmt.Sprintf("Trial %d/%d", min(m.sess.Cursor()+1, m.sess.Len()), m.sess.Len()),
		fmt.Sprintf("Time %.2fs", m.elapsed.Seconds()),
		fmt.Sprintf("Correct %d", m.sess.CorrectCount()),
	}
	if m.last != nil {
		if m.last.TimedOut {
			segments = append(segments, "Last: timeout")
		} else if m.last.Correct {
			segments = append(segments, "Last: correct")
		} else {
			segments = append(segments, "Last: wrong")
		}
	}
	if p, ok := m.profile(); ok {
		segments = append(segments, fmt.Sprintf("All-time %.1f%% · Best %.1f%%", p.AvgAccuracy, p.BestAccuracy))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(int(float64(m.width)*0.70), 1)
}

func field(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}
