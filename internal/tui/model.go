// Package tui is the terminal front end for the task queue.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textarea"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dsjohal14/taskpop/internal/render"
	"github.com/dsjohal14/taskpop/internal/scope/export"
	"github.com/dsjohal14/taskpop/internal/scope/tasks"
	"github.com/rs/zerolog"
)

// Style definitions for the UI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type inputMode int

const (
	modeTask inputMode = iota
	modePath
)

// importLoadedMsg carries the result of an asynchronous file read
type importLoadedMsg struct {
	path string
	data []byte
	err  error
}

// Model is the queue screen
type Model struct {
	store    *tasks.Store
	exporter *export.Exporter
	logger   zerolog.Logger
	keys     KeyMap

	input  textarea.Model
	mode   inputMode
	status string
}

// New creates the queue screen over store
func New(store *tasks.Store, exporter *export.Exporter, logger zerolog.Logger) *Model {
	ta := textarea.New()
	ta.Placeholder = "What needs doing?"
	ta.Prompt = "> "
	ta.CharLimit = 500
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Blur()

	return &Model{
		store:    store,
		exporter: exporter,
		logger:   logger,
		keys:     DefaultKeyMap(),
		input:    ta,
		mode:     modeTask,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		if m.input.Focused() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.input.SetWidth(max(msg.Width-2, 20))

	case importLoadedMsg:
		m.applyImport(msg)
	}

	return m, nil
}

// handleKey dispatches a key press. Keys that are not handled go to the text entry
// when it has focus.
func (m *Model) handleKey(k fmt.Stringer) (tea.Cmd, bool) {
	if k.String() == "ctrl+c" {
		return tea.Quit, true
	}

	if m.input.Focused() {
		switch {
		case key.Matches(k, m.keys.Submit):
			return m.submit(), true
		case key.Matches(k, m.keys.Cancel):
			m.closeInput()
			return nil, true
		}
		return nil, false
	}

	switch {
	case key.Matches(k, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(k, m.keys.Focus):
		return m.openInput(modeTask), true
	case key.Matches(k, m.keys.Pop):
		m.pop()
		return nil, true
	case key.Matches(k, m.keys.Import):
		return m.openInput(modePath), true
	case key.Matches(k, m.keys.Export):
		m.export()
		return nil, true
	}
	return nil, false
}

func (m *Model) openInput(mode inputMode) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	if mode == modePath {
		m.input.Placeholder = "Path to a .txt or .json file"
	} else {
		m.input.Placeholder = "What needs doing?"
	}
	m.input.Focus()
	return textarea.Blink
}

func (m *Model) closeInput() {
	m.input.Reset()
	m.input.Blur()
	m.mode = modeTask
}

func (m *Model) submit() tea.Cmd {
	value := m.input.Value()

	if m.mode == modePath {
		m.closeInput()
		path := strings.TrimSpace(value)
		if path == "" {
			return nil
		}
		m.status = "Importing " + path + "..."
		return readFile(path)
	}

	// The entry stays focused so several tasks can be typed in a row
	m.input.Reset()
	if t, ok := m.store.AddTask(value); ok {
		m.status = "Added: " + t.Description
	}
	return nil
}

func (m *Model) pop() {
	t, ok := m.store.PopNext()
	if !ok {
		m.status = "Queue is empty"
		return
	}
	m.status = fmt.Sprintf("Popped %q (%d this session)", t.Description, m.store.PopCount())
}

func (m *Model) export() {
	path, err := m.exporter.Export(m.store.ExportSnapshot())
	if err != nil {
		m.logger.Error().Err(err).Msg("export failed")
		m.status = "Export failed: " + err.Error()
		return
	}
	m.status = "Exported to " + path
}

// applyImport is the single synchronous apply step for file imports. Reads
// complete in any order and each result is applied as it arrives.
func (m *Model) applyImport(msg importLoadedMsg) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Str("path", msg.path).Msg("import read failed")
		m.status = "Import failed: " + msg.err.Error()
		return
	}

	res := m.store.Import(msg.data)
	m.logger.Info().
		Str("path", msg.path).
		Str("mode", string(res.Mode)).
		Int("added", res.Added).
		Msg("import applied")
	m.status = fmt.Sprintf("Imported %d task(s) from %s (%s)", res.Added, msg.path, res.Mode)
}

func readFile(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return importLoadedMsg{path: path, data: data, err: err}
	}
}

// View renders the UI
func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("taskpop"))
	b.WriteString("\n")

	if cur, ok := m.store.Current(); ok {
		b.WriteString(currentStyle.Render(render.FormatCurrent(cur)))
		b.WriteString("\n\n")
	}

	queue := m.store.Tasks()
	if len(queue) == 0 {
		b.WriteString(emptyStyle.Render("No tasks queued. Press / to add one."))
		b.WriteString("\n")
	}
	for _, t := range queue {
		b.WriteString(taskStyle.Render(render.FormatTask(t)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m *Model) helpLine() string {
	if m.input.Focused() {
		return "enter submit • esc cancel"
	}
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// Run starts the program on the alternate screen and blocks until it exits
func Run(store *tasks.Store, exporter *export.Exporter, logger zerolog.Logger) error {
	p := tea.NewProgram(New(store, exporter, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
