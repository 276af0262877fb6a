// Package tui renders the admission wizard in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"admissions-service/internal/intake"
	"admissions-service/internal/wizard"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type startedMsg struct{}

type stepDoneMsg struct {
	err error
}

type submitDoneMsg struct {
	result *intake.Result
	err    error
}

type detailMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).MarginBottom(1)
	stepStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#155724")).Background(lipgloss.Color("#D4EDDA")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#721C24")).Background(lipgloss.Color("#F8D7DA")).Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	requiredMark = focusStyle.Render("*")
)

// Model is the bubbletea model over a wizard.
type Model struct {
	ctx    context.Context
	wizard *wizard.Wizard

	focus int
	input textinput.Model
	busy  bool

	width int
}

func New(ctx context.Context, w *wizard.Wizard) *Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 512
	return &Model{ctx: ctx, wizard: w, input: in, busy: true}
}

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		m.wizard.Start(m.ctx)
		return startedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case startedMsg:
		m.busy = false
		m.setFocus(0)
		return m, nil

	case stepDoneMsg, submitDoneMsg:
		m.busy = false
		m.setFocus(0)
		return m, nil

	case detailMsg:
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := m.wizard.Current().Fields

	switch msg.String() {
	case "tab", "down":
		m.commit()
		m.setFocus(m.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.commit()
		m.setFocus(m.focus - 1)
		return m, nil
	case "ctrl+b":
		m.commit()
		if err := m.wizard.Prev(m.ctx); err == nil {
			m.setFocus(0)
		}
		return m, nil
	case "enter":
		m.commit()
		m.busy = true
		if m.wizard.IsLast() {
			return m, m.submit()
		}
		return m, m.next()
	}

	if f, ok := m.focused(fields); ok && f.Kind == wizard.KindSelect {
		switch msg.String() {
		case "left":
			return m, m.cycle(f, -1)
		case "right", " ":
			return m, m.cycle(f, 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) next() tea.Cmd {
	return func() tea.Msg {
		return stepDoneMsg{err: m.wizard.Next(m.ctx)}
	}
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		res, err := m.wizard.Submit(m.ctx)
		return submitDoneMsg{result: res, err: err}
	}
}

func (m *Model) cycle(f wizard.Field, delta int) tea.Cmd {
	if len(f.Options) == 0 {
		return nil
	}
	current := m.wizard.Value(f.Name)
	idx := -1
	for i, o := range f.Options {
		if o.Value == current {
			idx = i
		}
	}
	idx = (idx + delta + len(f.Options)) % len(f.Options)
	value := f.Options[idx].Value

	if f.Name == wizard.FieldScholarship {
		return func() tea.Msg {
			m.wizard.SelectScholarship(m.ctx, value)
			return detailMsg{}
		}
	}
	m.wizard.Set(f.Name, value)
	return nil
}

func (m *Model) focused(fields []wizard.Field) (wizard.Field, bool) {
	if m.focus < 0 || m.focus >= len(fields) {
		return wizard.Field{}, false
	}
	return fields[m.focus], true
}

// commit stores the text input into the focused field.
func (m *Model) commit() {
	f, ok := m.focused(m.wizard.Current().Fields)
	if !ok {
		return
	}
	switch f.Kind {
	case wizard.KindSelect:
	case wizard.KindFile:
		m.wizard.SetFiles(f.Name, splitPaths(m.input.Value())...)
	default:
		m.wizard.Set(f.Name, m.input.Value())
	}
}

func (m *Model) setFocus(i int) {
	fields := m.wizard.Current().Fields
	if len(fields) == 0 {
		m.focus = 0
		m.input.Blur()
		return
	}
	m.focus = (i + len(fields)) % len(fields)

	f := fields[m.focus]
	switch f.Kind {
	case wizard.KindSelect:
		m.input.Blur()
		return
	case wizard.KindFile:
		m.input.SetValue(strings.Join(m.wizard.Files(f.Name), ", "))
		m.input.Placeholder = "path/to/file.pdf"
	default:
		m.input.SetValue(m.wizard.Value(f.Name))
		m.input.Placeholder = ""
	}
	m.input.CursorEnd()
	m.input.Focus()
}

func splitPaths(raw string) []string {
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (m *Model) View() string {
	step := m.wizard.Current()
	sections := []string{
		titleStyle.Render("ADMISSIONS"),
		stepStyle.Render(fmt.Sprintf("Step %d/%d · %s", m.wizard.Step()+1, m.wizard.StepCount(), step.Title)),
	}

	var body []string
	if m.wizard.Step() == wizard.StepDocuments {
		reqs := m.wizard.Requirements()
		if len(reqs) > 0 {
			body = append(body, labelStyle.Render("Required documents: "+strings.Join(reqs, ", ")), "")
		}
	}
	for i, f := range step.Fields {
		body = append(body, m.renderField(i, f))
	}
	if m.wizard.Step() == wizard.StepScholarship {
		if s := m.wizard.ScholarshipDetail(); s != nil {
			reenroll := "No"
			if s.IncludesReenrollment {
				reenroll = "Yes"
			}
			body = append(body, "", panelStyle.Render(fmt.Sprintf("%s\nMonthly: $%.2f  Annual: $%.2f\nIncludes re-enrollment: %s",
				s.Description, s.MonthlyAmount, s.AnnualAmount, reenroll)))
		}
	}
	if len(body) == 0 {
		body = append(body, labelStyle.Render("Nothing to fill in on this step."))
	}
	sections = append(sections, panelStyle.Render(strings.Join(body, "\n")))

	if status := m.wizard.Status(); status.Message != "" {
		style := errorStyle
		if status.Success {
			style = okStyle
		}
		sections = append(sections, style.Render(status.Message))
	}

	sections = append(sections, hintStyle.Render(m.hints()))
	return strings.Join(sections, "\n")
}

func (m *Model) renderField(i int, f wizard.Field) string {
	label := f.Label
	if f.Required {
		label += requiredMark
	}

	pointer := "  "
	if i == m.focus {
		pointer = focusStyle.Render("› ")
	}

	var value string
	switch {
	case f.Kind == wizard.KindSelect:
		value = optionLabel(f, m.wizard.Value(f.Name))
		if i == m.focus {
			value = "< " + value + " >"
		}
	case i == m.focus:
		value = m.input.View()
	case f.Kind == wizard.KindFile:
		value = strings.Join(m.wizard.Files(f.Name), ", ")
	default:
		value = m.wizard.Value(f.Name)
	}
	return pointer + labelStyle.Render(label+": ") + value
}

func optionLabel(f wizard.Field, value string) string {
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	if len(f.Options) == 0 {
		return "(none available)"
	}
	return "(choose)"
}

func (m *Model) hints() string {
	if m.busy {
		return "working..."
	}
	parts := []string{"tab: next field"}
	if m.wizard.IsLast() {
		parts = append(parts, "enter: submit")
	} else {
		parts = append(parts, "enter: continue")
	}
	if m.wizard.ShowPrev() {
		parts = append(parts, "ctrl+b: back")
	}
	parts = append(parts, "esc: quit")
	return strings.Join(parts, " · ")
}
