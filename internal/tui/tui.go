package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/levelforge/internal/forge"
	"github.com/tatianab/levelforge/internal/models"
	"github.com/tatianab/levelforge/internal/preview"
)

type sessionState int

const (
	stateList sessionState = iota
	stateBuilding
	stateViewing
	stateError
)

type model struct {
	state    sessionState
	forge    *forge.Forge
	store    Store
	levels   []string
	visible  []string
	cursor   int
	filter   textinput.Model
	viewport viewport.Model
	result   *forge.Result
	err      error
	storeErr error
	width    int
	height   int
}

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	violationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5FD75F")).
		Bold(true)
)

// NewModel returns a browser over the given level directory names. When
// store remembers one of them, it starts selected.
func NewModel(f *forge.Forge, levels []string, store Store) model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter levels..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 30

	if store == nil {
		store = nopStore{}
	}
	m := model{
		state:   stateList,
		forge:   f,
		store:   store,
		levels:  levels,
		visible: levels,
		filter:  ti,
	}
	last := store.Last()
	for i, name := range levels {
		if name == last {
			m.cursor = i
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type builtMsg struct {
	name   string
	result *forge.Result
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state {
		case stateList:
			return m.updateList(msg)
		case stateViewing:
			return m.updateViewing(msg)
		case stateError:
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
				m.state = stateList
				m.err = nil
			}
			return m, nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.70)
		m.viewport.Height = msg.Height - 6
		if m.state == stateViewing {
			m.viewport.SetContent(m.renderLevel())
		}

	case builtMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateViewing
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(int(float64(m.width)*0.70), m.height-6)
		}
		m.viewport.SetContent(m.renderLevel())
		m.viewport.GotoTop()
		m.storeErr = m.store.Remember(msg.name)
		return m, nil
	}

	if m.state == stateViewing {
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if m.state == stateList {
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		name, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.state = stateBuilding
		return m, m.build(name)
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.visible = filterLevels(m.levels, m.filter.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
	return m, cmd
}

func (m model) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateList
		return m, nil
	case "q":
		return m, tea.Quit
	case "r":
		if name, ok := m.selected(); ok {
			m.state = stateBuilding
			return m, m.build(name)
		}
		return m, nil
	case "n", "p":
		next := m.cursor + 1
		if msg.String() == "p" {
			next = m.cursor - 1
		}
		if next < 0 || next >= len(m.visible) {
			return m, nil
		}
		m.cursor = next
		m.state = stateBuilding
		return m, m.build(m.visible[next])
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return "", false
	}
	return m.visible[m.cursor], true
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateList:
		s = lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("LEVELS")+" "+helpStyle.Render(m.forge.Root),
			"\n"+m.filter.View()+"\n",
			m.renderList(),
			"\n"+helpStyle.Render("up/down to move, enter to build and preview, esc to quit."),
		)

	case stateBuilding:
		s = "\n  Building level... please wait.\n"

	case stateViewing:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderPanel(),
		)
		help := helpStyle.Render("n/p: next/previous level, r: rebuild, esc: back, q: quit.")
		if m.storeErr != nil {
			help += "\n" + violationStyle.Render(fmt.Sprintf("Could not remember level: %v", m.storeErr))
		}
		s = lipgloss.JoinVertical(lipgloss.Left, mainView, "\n"+help)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to go back.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderList() string {
	if len(m.visible) == 0 {
		return helpStyle.Render("  (no levels)")
	}
	var b strings.Builder
	for i, name := range m.visible {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + name))
		} else {
			b.WriteString(itemStyle.Render("  " + name))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderLevel draws the maze of the current result followed by its report.
func (m model) renderLevel() string {
	res := m.result
	if res == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(preview.Styled(res.Artifacts.Grid, preview.Markers(res.Level)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(preview.Legend))
	b.WriteString("\n\n")

	if res.Report.OK() {
		b.WriteString(okStyle.Render("✓ No violations"))
		return b.String()
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("VIOLATIONS (%d)", res.Report.Len())))
	b.WriteString("\n")
	for _, v := range res.Report.Strings() {
		b.WriteString(violationStyle.Render("- " + v))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderPanel() string {
	res := m.result
	if res == nil {
		return ""
	}

	name := filepath.Base(res.Dir)
	lore := res.Lore
	if lore == nil {
		lore = &models.Lore{}
	}
	title := lore.Title
	if title == "" {
		title = name
	}

	content := titleStyle.Render("LEVEL") + "\n" + title + "\n" + name + "\n\n"
	content += titleStyle.Render("SIZE") + "\n" +
		fmt.Sprintf("%d x %d\n", res.Artifacts.Grid.Rows(), res.Artifacts.Grid.Cols()) + "\n"

	content += titleStyle.Render("SPIES") + "\n"
	if len(res.Artifacts.Spies) == 0 {
		content += "(none)\n"
	}
	for i, spy := range res.Artifacts.Spies {
		content += fmt.Sprintf("%c %s (%d legs)\n", preview.SpyGlyph(i), spy.ID, len(spy.Route))
	}
	content += "\n"

	if lore.Objective != "" {
		content += titleStyle.Render("OBJECTIVE") + "\n" + lore.Objective + "\n\n"
	}
	if lore.Quote != "" {
		content += helpStyle.Render(lore.Quote) + "\n"
	}

	panelWidth := int(float64(m.width) * 0.28)
	return panelStyle.Width(panelWidth).Height(m.viewport.Height).Render(content)
}

func (m model) build(name string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.forge.BuildLevel(filepath.Join(m.forge.Root, name))
		return builtMsg{name: name, result: res, err: err}
	}
}

// filterLevels keeps the names containing query, ignoring case.
func filterLevels(levels []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return levels
	}
	var out []string
	for _, name := range levels {
		if strings.Contains(strings.ToLower(name), query) {
			out = append(out, name)
		}
	}
	return out
}

// Run browses the levels under the forge root until the user quits.
func Run(f *forge.Forge, store Store) error {
	levels, err := models.ScanLevels(f.Root)
	if err != nil {
		return err
	}
	p := tea.NewProgram(NewModel(f, levels, store), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
