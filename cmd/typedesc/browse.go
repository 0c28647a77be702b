package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/subcommands"

	"github.com/wippyai/typedesc/schema"
)

type browseCmd struct {
	schemaPath string
}

func (*browseCmd) Name() string     { return "browse" }
func (*browseCmd) Synopsis() string { return "Explore declared types and their dynamic sizes." }
func (*browseCmd) Usage() string    { return "typedesc browse -schema <file.yaml>\n" }

func (cmd *browseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schemaPath, "schema", "", "Path to the declaration file.")
}

func (cmd *browseCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p := tea.NewProgram(newBrowseModel(cmd.schemaPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		printError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type typeInfo struct {
	name   string
	desc   string
	parent string
	fields []string
}

type browseState int

const (
	stateSelectType browseState = iota
	stateInputFields
	stateShowResult
)

type browseModel struct {
	err      error
	set      *schema.Set
	filename string
	result   string
	types    []typeInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    browseState
}

func newBrowseModel(filename string) *browseModel {
	return &browseModel{
		filename: filename,
		state:    stateSelectType,
	}
}

type loadedMsg struct {
	err   error
	set   *schema.Set
	types []typeInfo
}

type sizeResultMsg struct {
	err    error
	result string
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadSchema
}

func (m *browseModel) loadSchema() tea.Msg {
	set, err := loadSet(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{set: set, types: typeInfos(set)}
}

func typeInfos(set *schema.Set) []typeInfo {
	var types []typeInfo
	for _, name := range set.Names() {
		d, _ := set.Lookup(name)
		ti := typeInfo{name: name, desc: describeDesc(d), parent: set.ParentOf(name)}
		if ti.parent != "" {
			ti.fields = set.Fields(ti.parent)
		}
		types = append(types, ti)
	}
	return types
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputFields {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				if len(m.types) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.computeSize
				}
				m.state = stateInputFields
				return m, nil

			case stateInputFields:
				return m, m.computeSize

			case stateShowResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInputFields && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputFields, stateShowResult:
				m.reset()
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.set = msg.set
		m.types = msg.types

	case sizeResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputFields {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *browseModel) reset() {
	m.state = stateSelectType
	m.inputs = nil
	m.result = ""
	m.err = nil
}

func (m *browseModel) prepareInputs() {
	t := m.types[m.selected]
	m.inputs = make([]textinput.Model, len(t.fields))
	for i, field := range t.fields {
		ti := textinput.New()
		ti.Placeholder = "0"
		ti.Prompt = field + ": "
		ti.Width = 20
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *browseModel) computeSize() tea.Msg {
	t := m.types[m.selected]
	values := make(map[string]int64)
	for i, input := range m.inputs {
		s := strings.TrimSpace(input.Value())
		if s == "" {
			continue
		}
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return sizeResultMsg{err: fmt.Errorf("field %s: %w", t.fields[i], err)}
		}
		values[t.fields[i]] = n
	}

	size, err := m.set.DynamicSize(t.name, values)
	if err != nil {
		return sizeResultMsg{err: err}
	}
	l, err := m.set.Layout(t.name)
	if err != nil {
		return sizeResultMsg{err: err}
	}
	return sizeResultMsg{result: fmt.Sprintf("%d bytes\n\n%s", size, layoutTable(t.name, l))}
}

func (m *browseModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.set == nil {
		return "Loading declarations..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("typedesc"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type:\n\n")
		for i, t := range m.types {
			line := t.name + "  " + t.desc
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter size • q quit"))

	case stateInputFields:
		t := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Fields of %s for %s\n\n", t.parent, t.name))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter compute • esc back"))

	case stateShowResult:
		t := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Size of %s:\n\n", t.name))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}
