// Package tui is the interactive surface: a paste area on top, conversion
// results below.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"calconv/internal/convert"
	"calconv/internal/samples"
)

// sessionState indicates which pane has focus
type sessionState int

const (
	focusEditor sessionState = iota
	focusResults
)

// Styles
var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#CC3333")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			PaddingLeft(1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Bold(true)
)

// msg types
type conversionDoneMsg struct {
	result *convert.Result
	err    *convert.Error
}

// Model implementation
type Model struct {
	opts  convert.Options
	state sessionState

	input   textarea.Model
	results viewport.Model

	result  *convert.Result
	convErr *convert.Error

	width  int
	height int
	ready  bool
}

func NewModel(opts convert.Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste here an iCalendar, JSCalendar, vCard or JSContact file. Or press ctrl+r to try a sample."
	ta.ShowLineNumbers = false
	ta.Focus()

	return Model{
		opts:  opts,
		state: focusEditor,
		input: ta,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case conversionDoneMsg:
		m.result = msg.result
		m.convErr = msg.err
		m.results.SetContent(m.renderResults())
		m.results.GotoTop()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.results.SetContent(m.renderResults())
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+s", "ctrl+j":
			return m, convertCmd(m.input.Value(), m.opts)

		case "ctrl+r":
			sample := samples.Random()
			m.input.SetValue(sample.Text)
			m.state = focusEditor
			m.input.Focus()
			return m, convertCmd(sample.Text, m.opts)

		case "ctrl+l":
			m.input.Reset()
			m.result = nil
			m.convErr = nil
			m.results.SetContent("")
			m.state = focusEditor
			m.input.Focus()
			return m, nil

		case "tab":
			if m.state == focusEditor {
				m.state = focusResults
				m.input.Blur()
			} else {
				m.state = focusEditor
				m.input.Focus()
			}
			return m, nil

		case "esc":
			if m.state == focusResults {
				m.state = focusEditor
				m.input.Focus()
				return m, nil
			}
			return m, tea.Quit
		}
	}

	if m.state == focusEditor {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *Model) layout() {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	editorHeight := m.height / 3
	if editorHeight < 5 {
		editorHeight = 5
	}
	resultsHeight := m.height - editorHeight - 7
	if resultsHeight < 5 {
		resultsHeight = 5
	}

	m.input.SetWidth(width)
	m.input.SetHeight(editorHeight)
	m.results.Width = width
	m.results.Height = resultsHeight
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	s := strings.Builder{}
	s.WriteString(titleStyle.Render("calconv"))
	s.WriteString(" ")
	s.WriteString(subtleStyle.Render("iCalendar / JSCalendar / vCard / JSContact conversion"))
	s.WriteString("\n\n")

	if m.convErr != nil {
		s.WriteString(errorStyle.Render(m.convErr.Error()))
		s.WriteString("\n\n")
	}

	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(m.results.View())
	s.WriteString("\n")
	s.WriteString(subtleStyle.Render("(ctrl+s convert, ctrl+r random sample, ctrl+l clear, tab switch pane, ctrl+c quit)"))

	return appStyle.Render(s.String())
}

func (m Model) renderResults() string {
	if m.result == nil {
		return ""
	}

	s := strings.Builder{}
	source := m.result.Source

	s.WriteString(headingStyle.Render("Conversion results"))
	s.WriteString("  ")
	s.WriteString(subtleStyle.Render(fmt.Sprintf("%s → %s", source, source.Counterpart())))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("This is how your %s looks like in %s format:\n\n", source, source.Counterpart()))
	s.WriteString(blockStyle.Render(m.result.Output))
	s.WriteString("\n\n")

	if m.result.RoundTrip != "" {
		s.WriteString(fmt.Sprintf("And this is how it would look like converted back to %s:\n\n", source))
		s.WriteString(blockStyle.Render(m.result.RoundTrip))
		s.WriteString("\n\n")
	}

	if len(m.result.Occurrences) > 0 {
		s.WriteString(headingStyle.Render("Calendar expansion results"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("These are the first %d occurrences of the pasted calendar event:\n\n", len(m.result.Occurrences)))
		s.WriteString(renderOccurrenceTable(m.result.Occurrences))
	}

	return s.String()
}

func renderOccurrenceTable(occurrences []convert.Occurrence) string {
	fromWidth := len("From date")
	for _, occ := range occurrences {
		if len(occ.From) > fromWidth {
			fromWidth = len(occ.From)
		}
	}

	s := strings.Builder{}
	s.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-*s  %s", fromWidth, "From date", "To date")))
	s.WriteString("\n")
	for _, occ := range occurrences {
		s.WriteString(fmt.Sprintf("%-*s  %s\n", fromWidth, occ.From, occ.To))
	}
	return s.String()
}

// Commands
func convertCmd(input string, opts convert.Options) tea.Cmd {
	return func() tea.Msg {
		result, err := convert.Convert(input, opts)
		return conversionDoneMsg{result: result, err: err}
	}
}
