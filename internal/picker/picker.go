package picker

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
)

const maxVisible = 10

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#89F0CB"})
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	matchStyle    = lipgloss.NewStyle().Underline(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"})
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "convert")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

type model struct {
	files   []File
	matches fuzzy.Matches
	cursor  int
	filter  textinput.Model
	chosen  *File
	width   int
}

func newModel(files []File) model {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "> "
	ti.Focus()

	m := model{files: files, filter: ti, width: 80}
	m.refilter()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Choose):
			if len(m.matches) > 0 {
				f := m.files[m.matches[m.cursor].Index]
				m.chosen = &f
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.refilter()
	}
	return m, cmd
}

// refilter ranks files against the filter. An empty filter keeps the
// original order.
func (m *model) refilter() {
	pattern := strings.TrimSpace(m.filter.Value())
	if pattern == "" {
		m.matches = make(fuzzy.Matches, len(m.files))
		for i, f := range m.files {
			m.matches[i] = fuzzy.Match{Str: f.Name, Index: i}
		}
	} else {
		names := make([]string, len(m.files))
		for i, f := range m.files {
			names[i] = f.Name
		}
		m.matches = fuzzy.Find(pattern, names)
	}
	if m.cursor >= len(m.matches) {
		m.cursor = max(0, len(m.matches)-1)
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select a conversation"))
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.matches) == 0 {
		b.WriteString(dimStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := min(len(m.matches), start+maxVisible)
	nameWidth := 0
	for _, match := range m.matches[start:end] {
		nameWidth = max(nameWidth, runewidth.StringWidth(m.files[match.Index].Name))
	}
	for i := start; i < end; i++ {
		match := m.matches[i]
		f := m.files[match.Index]
		pad := strings.Repeat(" ", nameWidth-runewidth.StringWidth(f.Name))
		name := highlight(f.Name, match.MatchedIndexes) + pad
		age := dimStyle.Render(humanize.Time(f.ModTime))
		line := fmt.Sprintf("%s  %s", name, age)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(truncate.StringWithTail(line, uint(max(m.width-2, 20)), "…"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d • ↑/↓ move • enter convert • esc quit", len(m.matches), len(m.files))))
	b.WriteString("\n")
	return b.String()
}

func highlight(s string, idx []int) string {
	if len(idx) == 0 {
		return s
	}
	hit := make(map[int]bool, len(idx))
	for _, i := range idx {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Options configures Pick.
type Options struct {
	Input  io.Reader
	Output io.Writer
}

// Pick returns the path of the chosen file. A single candidate is chosen
// without asking.
func Pick(files []File, opts Options) (string, error) {
	switch len(files) {
	case 0:
		return "", ErrNoFiles
	case 1:
		return files[0].Path, nil
	}

	var teaOpts []tea.ProgramOption
	if opts.Input != nil {
		teaOpts = append(teaOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(opts.Output))
	}

	final, err := tea.NewProgram(newModel(files), teaOpts...).Run()
	if err != nil {
		return "", fmt.Errorf("picker failed: %w", err)
	}
	m, ok := final.(model)
	if !ok || m.chosen == nil {
		return "", ErrCancelled
	}
	return m.chosen.Path, nil
}
