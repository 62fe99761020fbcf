// Package picker prompts the operator to choose one build output when
// discovery finds several. Selection validation is a pure function so it can
// be tested apart from the terminal I/O that drives it.
package picker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buckleypaul/teensyup/internal/pio"
	"github.com/buckleypaul/teensyup/internal/ui"
)

// ErrAborted is returned when the operator closes the prompt without
// choosing a build.
var ErrAborted = errors.New("selection aborted")

// ParseSelection validates a 1-based selection against count items and
// returns the 0-based index.
func ParseSelection(input string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", input)
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("selection %d out of range 1-%d", n, count)
	}
	return n - 1, nil
}

// Pick runs an interactive prompt over the terminal and returns the chosen
// build. The operator can type a number or move the cursor with the arrow
// keys; esc or ctrl+c aborts.
func Pick(builds []pio.Build) (pio.Build, error) {
	res, err := tea.NewProgram(newModel(builds)).Run()
	if err != nil {
		return pio.Build{}, err
	}
	m := res.(model)
	if m.choice < 0 {
		return pio.Build{}, ErrAborted
	}
	return builds[m.choice], nil
}

type model struct {
	builds []pio.Build
	input  textinput.Model
	cursor int
	errMsg string
	choice int // -1 until a selection is made
}

func newModel(builds []pio.Build) model {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("1-%d", len(builds))
	ti.Prompt = "> "
	ti.CharLimit = 4
	ti.Focus()

	return model{
		builds: builds,
		input:  ti,
		choice: -1,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.builds)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if typed := m.input.Value(); typed != "" {
				idx, err := ParseSelection(typed, len(m.builds))
				if err != nil {
					m.errMsg = err.Error()
					m.input.SetValue("")
					return m, nil
				}
				m.choice = idx
			} else {
				m.choice = m.cursor
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(ui.Warning).Bold(true)
	b.WriteString(title.Render("Multiple build outputs found:"))
	b.WriteString("\n\n")

	selected := lipgloss.NewStyle().Foreground(ui.Primary).Bold(true)
	for i, build := range m.builds {
		line := fmt.Sprintf("%d. %s -> %s", i+1, build.Env, build.HexPath)
		if i == m.cursor {
			b.WriteString(selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		errStyle := lipgloss.NewStyle().Foreground(ui.Error)
		b.WriteString(errStyle.Render("Invalid selection: " + m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(ui.DimStyle.Render("enter:select  esc:abort"))
	b.WriteString("\n")

	return b.String()
}
