package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"semcheck/internal/domain"
	"semcheck/internal/render"
	"semcheck/internal/workflow"
)

// WorkflowPort is the TUI-facing subset of the orchestrator.
type WorkflowPort interface {
	Snapshot() workflow.State
	Busy() bool
	SetMode(m domain.Mode)
	SetText(slot domain.Slot, content string)
	PrimaryAction() workflow.Call
	ExtractFromFile(slot domain.Slot, file *domain.Upload) workflow.Call
	Settle(s workflow.Settlement)
}

// settledMsg carries a finished call back onto the event loop.
type settledMsg struct {
	settlement workflow.Settlement
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx       context.Context
	wf        WorkflowPort
	editors   [domain.NumSlots]textarea.Model
	pathInput textinput.Model
	spinner   spinner.Model
	table     table.Model
	help      help.Model
	keys      keyMap
	focus     domain.Slot
	prompting bool
	status    string
	width     int
	height    int
	ready     bool
}

// New creates a new TUI model instance. ctx is handed to every call and
// should be cancelled when the program exits.
func New(ctx context.Context, wf WorkflowPort, status string) Model {
	var editors [domain.NumSlots]textarea.Model
	for i := range editors {
		ta := textarea.New()
		ta.ShowLineNumbers = false
		ta.CharLimit = 0
		ta.MaxHeight = 0
		editors[i] = ta
	}
	editors[domain.Slot1].Focus()

	pi := textinput.New()
	pi.Prompt = "file> "
	pi.Placeholder = "path to a .txt or .docx file"
	pi.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	tbl := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithHeight(6),
	)

	m := Model{
		ctx:       ctx,
		wf:        wf,
		editors:   editors,
		pathInput: pi,
		spinner:   sp,
		table:     tbl,
		help:      help.New(),
		keys:      defaultKeyMap(),
		status:    status,
	}
	m.applyPlaceholders()
	return m
}

// Init initializes the model (text area cursor blink).
func (m Model) Init() tea.Cmd { return textarea.Blink }

// Update handles key, window and settlement events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.wf.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case settledMsg:
		s := msg.settlement
		m.wf.Settle(s)
		if s.Op == domain.OpExtracting {
			m.editors[s.Slot].SetValue(m.wf.Snapshot().Slots[s.Slot].Content)
		}
		m.refreshTable()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.prompting {
			return m.updatePrompt(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.ToggleMode):
			m.toggleMode()
			return m, nil
		case key.Matches(msg, m.keys.SwitchSlot):
			if m.wf.Snapshot().Mode == domain.ModeCompare {
				m.setFocus(1 - m.focus)
			}
			return m, nil
		case key.Matches(msg, m.keys.OpenFile):
			if m.wf.Busy() {
				return m, nil
			}
			m.prompting = true
			m.status = ""
			m.editors[m.focus].Blur()
			cmd := m.pathInput.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Run):
			cmd := m.dispatch(m.wf.PrimaryAction())
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.editors[m.focus], cmd = m.editors[m.focus].Update(msg)
	m.wf.SetText(m.focus, m.editors[m.focus].Value())
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	case msg.Type == tea.KeyEnter:
		path := strings.TrimSpace(m.pathInput.Value())
		if path != "" && !workflow.Accepts(path) {
			m.status = "Only .txt and .docx files can be loaded."
			return m, nil
		}
		var file *domain.Upload
		if path != "" {
			file = workflow.OpenFile(expandHome(path))
		}
		slot := m.focus
		m.closePrompt()
		cmd := m.dispatch(m.wf.ExtractFromFile(slot, file))
		return m, cmd
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// dispatch runs call off the event loop. A nil call means the action was
// refused (busy or invalid) and the state already says why.
func (m *Model) dispatch(call workflow.Call) tea.Cmd {
	m.refreshTable()
	if call == nil {
		return nil
	}
	m.status = ""
	ctx := m.ctx
	run := func() tea.Msg { return settledMsg{settlement: call(ctx)} }
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) toggleMode() {
	next := domain.ModeCheck
	if m.wf.Snapshot().Mode == domain.ModeCheck {
		next = domain.ModeCompare
	}
	m.wf.SetMode(next)
	if next == domain.ModeCheck && m.focus == domain.Slot2 {
		m.setFocus(domain.Slot1)
	}
	m.applyPlaceholders()
	m.refreshTable()
	m.resize()
}

func (m *Model) setFocus(s domain.Slot) {
	m.editors[m.focus].Blur()
	m.focus = s
	m.editors[m.focus].Focus()
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.pathInput.Reset()
	m.pathInput.Blur()
	m.editors[m.focus].Focus()
}

func (m *Model) applyPlaceholders() {
	if m.wf.Snapshot().Mode == domain.ModeCheck {
		m.editors[domain.Slot1].Placeholder = "Paste the text to check here..."
	} else {
		m.editors[domain.Slot1].Placeholder = "Paste the first text here..."
	}
	m.editors[domain.Slot2].Placeholder = "Paste the second text here..."
}

func (m *Model) refreshTable() {
	st := m.wf.Snapshot()
	v := render.Project(st.Mode, st.Result)
	rows := make([]table.Row, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, table.Row{r.DocumentName, render.Percent(r.Similarity), r.Preview})
	}
	m.table.SetRows(rows)
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	cols := 1
	if m.wf.Snapshot().Mode == domain.ModeCompare {
		cols = 2
	}
	fw, _ := editorBoxStyle.GetFrameSize()
	w := max(20, m.width/cols-fw)
	h := max(3, m.height/3)
	for i := range m.editors {
		m.editors[i].SetWidth(w)
		m.editors[i].SetHeight(h)
	}
	m.pathInput.Width = max(20, m.width-10)
	m.table.SetColumns(tableColumns(m.width))
	m.table.SetWidth(max(40, m.width-2))
	m.help.Width = m.width
}

func tableColumns(width int) []table.Column {
	doc, score := 24, 11
	preview := max(20, width-doc-score-8)
	return []table.Column{
		{Title: "Document", Width: doc},
		{Title: "Similarity", Width: score},
		{Title: "Preview", Width: preview},
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
