package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/walterschell/betza-board/board"
	"github.com/walterschell/betza-board/interaction"
)

type mode int

const (
	modeNormal mode = iota
	modeInput
)

// viewMsg carries a published Session view into the program.
type viewMsg interaction.View

type submitErrMsg struct{ err error }

type Model struct {
	submit func(interaction.Command) error

	view   interaction.View
	cursor board.Slot

	m        mode
	input    textinput.Model
	logLines []string

	width  int
	height int
}

func NewModel(submit func(interaction.Command) error) Model {
	ti := textinput.New()
	ti.Placeholder = "betza fmWfcF | range N | mod f | commit | reset | flip"
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = 60

	return Model{
		submit: submit,
		cursor: board.ToDisplay(12),
		m:      modeNormal,
		input:  ti,
		logLines: []string{
			"ready (arrows/hjkl move, enter clicks, i for commands)",
		},
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = min(80, max(30, m.width-4))
		return m, nil

	case viewMsg:
		prev := m.view.Notice
		m.view = interaction.View(msg)
		if m.view.Notice != "" && m.view.Notice != prev {
			m.appendLog("! " + m.view.Notice)
		}
		return m, nil

	case submitErrMsg:
		m.appendLog(fmt.Sprintf("submit failed: %v", msg.err))
		return m, nil

	case tea.KeyMsg:
		switch m.m {
		case modeNormal:
			return m.normalKey(msg)

		case modeInput:
			switch msg.String() {
			case "esc":
				m.m = modeNormal
				m.input.Blur()
				return m, nil
			case "enter":
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				m.m = modeNormal
				m.input.Blur()
				if line == "" {
					return m, nil
				}
				return m, m.execCommand(line)
			}

			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) normalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row, col := int(m.cursor)/board.Files, int(m.cursor)%board.Files
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "i", ":":
		m.m = modeInput
		m.input.SetValue("")
		m.input.Focus()
		return m, nil
	case "up", "k":
		row = max(0, row-1)
	case "down", "j":
		row = min(board.Ranks-1, row+1)
	case "left", "h":
		col = max(0, col-1)
	case "right", "l":
		col = min(board.Files-1, col+1)
	case "enter", " ":
		return m, m.send(interaction.SquareClicked{Slot: m.cursor})
	case "f":
		return m, m.send(interaction.Flipped{})
	case "esc":
		return m, m.send(interaction.BuilderReset{})
	}
	m.cursor = board.Slot(row*board.Files + col)
	return m, nil
}

// execCommand parses one input line into a Command.
func (m *Model) execCommand(line string) tea.Cmd {
	m.appendLog("> " + line)

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "betza", "notation":
		return m.send(interaction.NotationSubmitted{Notation: arg})
	case "range":
		if arg == "" {
			m.appendLog("range needs a token")
			return nil
		}
		return m.send(interaction.BuilderRange{Token: arg})
	case "mod":
		if arg == "" {
			m.appendLog("mod needs a token")
			return nil
		}
		return m.send(interaction.BuilderModifier{Token: arg})
	case "commit":
		return m.send(interaction.BuilderCommit{})
	case "reset":
		return m.send(interaction.BuilderReset{})
	case "flip":
		return m.send(interaction.Flipped{})
	case "click":
		n, err := strconv.Atoi(arg)
		if err != nil || !board.Slot(n).Valid() {
			m.appendLog(fmt.Sprintf("invalid slot: %q", arg))
			return nil
		}
		m.cursor = board.Slot(n)
		return m.send(interaction.SquareClicked{Slot: m.cursor})
	default:
		m.appendLog(fmt.Sprintf("unknown command: %s", name))
		return nil
	}
}

// send submits cmd off the update loop.
func (m Model) send(cmd interaction.Command) tea.Cmd {
	submit := m.submit
	return func() tea.Msg {
		if err := submit(cmd); err != nil {
			return submitErrMsg{err}
		}
		return nil
	}
}

func (m *Model) appendLog(s string) {
	m.logLines = append(m.logLines, s)
	if len(m.logLines) > 200 {
		m.logLines = m.logLines[len(m.logLines)-200:]
	}
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	modeStr := "NORMAL"
	if m.m == modeInput {
		modeStr = "INPUT"
	}
	orientation := m.view.Board.Orientation
	if orientation == "" {
		orientation = "white"
	}
	header := titleStyle.Render(fmt.Sprintf("betza-board  [%s at bottom]  mode:%s", orientation, modeStr))

	bv := m.view.Builder
	status := fmt.Sprintf("notation: %s\nbuilder:  %s (range %q, modifiers %q)",
		m.view.Notation, bv.Candidate, bv.Range, bv.Modifiers)
	if m.view.Notice != "" {
		status += "\nnotice:   " + m.view.Notice
	}
	boardBox := boxStyle.Render(RenderBoard(m.view.Board, m.cursor) + "\n" + status)

	logHeight := max(5, m.height-boardHeight-8)
	logStart := max(0, len(m.logLines)-logHeight)
	logBody := strings.Join(m.logLines[logStart:], "\n")
	logBox := boxStyle.Width(max(20, m.width-2)).Height(logHeight).Render(logBody)

	var inputLine string
	if m.m == modeInput {
		inputLine = m.input.View()
	} else {
		inputLine = "press i to enter command, q to quit"
	}
	inputBox := boxStyle.Width(max(20, m.width-2)).Render(inputLine)

	return header + "\n" + boardBox + "\n" + logBox + "\n" + inputBox + "\n"
}

// rows taken by the board box: file header, eight ranks, blank, status, borders
const boardHeight = 1 + board.Ranks + 1 + 3 + 2
