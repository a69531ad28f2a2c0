package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"semcheck/internal/domain"
	"semcheck/internal/render"
	"semcheck/internal/workflow"
)

// View renders the TUI layout from a snapshot of the workflow state.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	st := m.wf.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Semantic Plagiarism Check"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Similarity by meaning (Sentence-BERT)"))
	b.WriteString("\n\n")
	b.WriteString(m.modeTabs(st.Mode))
	b.WriteString("\n")
	b.WriteString(m.editorsView(st))
	b.WriteString("\n")
	if m.prompting {
		b.WriteString(promptStyle.Render(fmt.Sprintf("Load into %s: %s", m.focus, m.pathInput.View())))
		b.WriteString("\n")
	}
	b.WriteString(m.actionLine(st))
	b.WriteString("\n")

	switch {
	case st.Error != "":
		b.WriteString(errorBoxStyle.Render(errorTitleStyle.Render("Something went wrong") + "\n" + st.Error))
		b.WriteString("\n")
	case st.Result != nil:
		b.WriteString(m.resultView(st))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) modeTabs(mode domain.Mode) string {
	tab := func(label string, active bool) string {
		if active {
			return activeTabStyle.Render(label)
		}
		return tabStyle.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tab("Compare two texts", mode == domain.ModeCompare),
		tab("Check against corpus", mode == domain.ModeCheck),
	)
}

func (m Model) editorsView(st workflow.State) string {
	box := func(slot domain.Slot) string {
		style := editorBoxStyle
		if slot == m.focus && !m.prompting {
			style = focusedEditorBoxStyle
		}
		label := fmt.Sprintf("Words: %d", domain.WordCount(st.Slots[slot].Content))
		if f := st.Slots[slot].File; f != "" {
			label += "  " + subtleStyle.Render("reading "+f)
		}
		return style.Render(m.editors[slot].View() + "\n" + subtleStyle.Render(label))
	}
	if st.Mode == domain.ModeCheck {
		return box(domain.Slot1)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, box(domain.Slot1), box(domain.Slot2))
}

func (m Model) actionLine(st workflow.State) string {
	switch st.Operation {
	case domain.OpExtracting:
		return m.spinner.View() + " Analysing file..."
	case domain.OpChecking:
		return m.spinner.View() + " Checking similarity..."
	}
	if st.Mode == domain.ModeCheck {
		return actionStyle.Render("ctrl+s  Check against corpus")
	}
	return actionStyle.Render("ctrl+s  Compare texts")
}

func (m Model) resultView(st workflow.State) string {
	v := render.Project(st.Mode, st.Result)
	switch v.Kind {
	case render.KindCompare:
		return resultTitleStyle.Render(v.Title) + "\n" + bandStyle(v.Band).Render(render.Percent(v.Score))
	case render.KindCheck:
		var b strings.Builder
		b.WriteString(resultTitleStyle.Render(v.Title))
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("(" + v.Note + ")"))
		b.WriteString("\n")
		b.WriteString(bandStyle(v.Band).Render(render.Percent(v.Score)))
		b.WriteString("\n\n")
		if len(v.Rows) == 0 {
			b.WriteString(subtleStyle.Render(fmt.Sprintf("No documents above %.0f%% similarity.", render.DisplayThreshold)))
		} else {
			b.WriteString(m.table.View())
		}
		if v.Hidden > 0 {
			b.WriteString("\n")
			b.WriteString(subtleStyle.Render(fmt.Sprintf("%d low-similarity document(s) hidden", v.Hidden)))
		}
		return b.String()
	}
	return ""
}

func bandStyle(b render.Band) lipgloss.Style {
	switch b {
	case render.BandHigh:
		return scoreHighStyle
	case render.BandMedium:
		return scoreMediumStyle
	default:
		return scoreLowStyle
	}
}

var (
	titleStyle            = lipgloss.NewStyle().Bold(true)
	subtleStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tabStyle              = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("7"))
	activeTabStyle        = tabStyle.Copy().Bold(true).Foreground(lipgloss.Color("12")).Underline(true)
	editorBoxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedEditorBoxStyle = editorBoxStyle.Copy().BorderForeground(lipgloss.Color("12"))
	promptStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	actionStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	spinnerStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	statusStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorBoxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1)
	errorTitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	resultTitleStyle      = lipgloss.NewStyle().Bold(true)
	scoreHighStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	scoreMediumStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	scoreLowStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)
