package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1)
)

type replyMsg struct {
	text string
	err  error
}

type model struct {
	addr     string
	client   *wireClient
	input    textinput.Model
	history  viewport.Model
	lines    []string
	connErr  error
	quitting bool
}

func initialModel(addr string) model {
	ti := textinput.New()
	ti.Placeholder = "PING"
	ti.Prompt = "spatio> "
	ti.Focus()
	ti.CharLimit = 512

	vp := viewport.New(80, 18)
	vp.SetContent(dimStyle.Render("connecting to " + addr + "..."))

	return model{addr: addr, input: ti, history: vp}
}

func (m model) Init() tea.Cmd {
	return connectCmd(m.addr)
}

type connectedMsg struct {
	client *wireClient
	err    error
}

func connectCmd(addr string) tea.Cmd {
	return func() tea.Msg {
		c, err := dial(addr)
		return connectedMsg{client: c, err: err}
	}
}

func sendCmd(c *wireClient, line string) tea.Cmd {
	return func() tea.Msg {
		text, err := c.send(line)
		return replyMsg{text: text, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.history.Width = msg.Width
		m.history.Height = msg.Height - 4
		return m, nil

	case connectedMsg:
		if msg.err != nil {
			m.connErr = msg.err
			m.lines = append(m.lines, errorStyle.Render("connect failed: "+msg.err.Error()))
		} else {
			m.client = msg.client
			m.lines = append(m.lines, dimStyle.Render("connected to "+m.addr))
		}
		m.history.SetContent(strings.Join(m.lines, "\n"))
		return m, nil

	case replyMsg:
		if msg.err != nil {
			m.lines = append(m.lines, errorStyle.Render(msg.err.Error()))
		} else {
			m.lines = append(m.lines, msg.text)
		}
		m.history.SetContent(strings.Join(m.lines, "\n"))
		m.history.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			m.lines = append(m.lines, promptStyle.Render("spatio> ")+line)
			m.history.SetContent(strings.Join(m.lines, "\n"))
			if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
				m.quitting = true
				return m, tea.Quit
			}
			if m.client == nil {
				m.lines = append(m.lines, errorStyle.Render("not connected"))
				return m, nil
			}
			return m, sendCmd(m.client, line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return dimStyle.Render("bye\n")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("spatio-cli: %s", m.addr)))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.history.View()))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter to send · esc to quit"))
	return b.String()
}
