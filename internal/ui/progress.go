package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"soundlaw/internal/apply"
)

type progressModel struct {
	title   string
	events  <-chan apply.Event
	phases  <-chan string
	phase   string
	spinner spinner.Model
	prog    progress.Model
	items   []ruleItem
	width   int
	done    bool
}

type ruleItem struct {
	text      string
	status    string
	wordsDone int
	wordTotal int
	changed   int
}

type eventMsg apply.Event
type phaseMsg string
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// a rule chain over a word list. Rows follow the rule order; the bar sums
// finished rules plus the word fraction of the one in flight. phases may
// be nil; otherwise the header shows the pipeline phase in flight.
func NewProgressModel(title string, rules []string, events <-chan apply.Event, phases <-chan string) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]ruleItem, 0, len(rules))
	for _, text := range rules {
		items = append(items, ruleItem{text: text, status: "queued"})
	}
	return &progressModel{
		title:   title,
		events:  events,
		phases:  phases,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.listenForEvent()}
	if m.phases != nil {
		cmds = append(cmds, m.listenForPhase())
	}
	return tea.Batch(cmds...)
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := apply.Event(msg)
		cmd := m.applyEvent(ev)
		return m, tea.Batch(cmd, m.listenForEvent())
	case phaseMsg:
		m.phase = string(msg)
		return m, m.listenForPhase()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		if m.phase != "" {
			header = fmt.Sprintf("%s [%s]", header, m.phase)
		}
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 10
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.text, nameWidth)
		if item.status == "done" && item.changed > 0 {
			name = fmt.Sprintf("%s  [%d changed]", name, item.changed)
		}
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%10s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s", statusStyled, name))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) listenForPhase() tea.Cmd {
	return func() tea.Msg {
		name, ok := <-m.phases
		if !ok {
			return nil
		}
		return phaseMsg(name)
	}
}

func (m *progressModel) applyEvent(ev apply.Event) tea.Cmd {
	if ev.Rule < 0 || ev.Rule >= len(m.items) {
		return nil
	}
	item := &m.items[ev.Rule]

	switch ev.Stage {
	case apply.StageWord:
		item.status = "applying"
		item.wordsDone++
		item.wordTotal = ev.Total
		if ev.Changed {
			item.changed++
		}
	case apply.StageRule:
		item.status = "done"
	}

	total := 0.0
	for _, it := range m.items {
		if it.status == "done" {
			total += 1.0
		} else if it.wordTotal > 0 {
			total += float64(it.wordsDone) / float64(it.wordTotal)
		}
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "applying":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
