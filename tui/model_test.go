package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/walterschell/betza-board/board"
	"github.com/walterschell/betza-board/interaction"
)

type recorder struct{ cmds []interaction.Command }

func (r *recorder) submit(cmd interaction.Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press feeds msg to m and runs the returned command, if any.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd != nil {
		cmd()
	}
	return next.(Model)
}

func TestCursorMovesAndClicks(t *testing.T) {
	rec := &recorder{}
	m := NewModel(rec.submit)
	if m.cursor != board.ToDisplay(12) {
		t.Fatalf("cursor = %d", m.cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(t, m, runes("l"))
	if want := board.ToDisplay(21); m.cursor != want {
		t.Errorf("cursor = %d, want %d (f3)", m.cursor, want)
	}

	// Edges clamp.
	for i := 0; i < 10; i++ {
		m = press(t, m, runes("h"))
	}
	if m.cursor%board.Files != 0 {
		t.Errorf("cursor = %d, want first column", m.cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(rec.cmds) != 1 || rec.cmds[0] != (interaction.SquareClicked{Slot: m.cursor}) {
		t.Errorf("cmds = %+v", rec.cmds)
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		line string
		want interaction.Command
	}{
		{"betza fmWfcF", interaction.NotationSubmitted{Notation: "fmWfcF"}},
		{"betza", interaction.NotationSubmitted{}},
		{"range N", interaction.BuilderRange{Token: "N"}},
		{"mod f", interaction.BuilderModifier{Token: "f"}},
		{"commit", interaction.BuilderCommit{}},
		{"reset", interaction.BuilderReset{}},
		{"flip", interaction.Flipped{}},
		{"click 3", interaction.SquareClicked{Slot: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rec := &recorder{}
			m := press(t, NewModel(rec.submit), runes("i"))
			if m.m != modeInput {
				t.Fatal("i should open the command line")
			}
			m.input.SetValue(tt.line)
			m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			if m.m != modeNormal {
				t.Error("enter should close the command line")
			}
			if len(rec.cmds) != 1 || rec.cmds[0] != tt.want {
				t.Errorf("cmds = %+v, want %+v", rec.cmds, tt.want)
			}
		})
	}
}

func TestBadCommandsSubmitNothing(t *testing.T) {
	for _, line := range []string{"range", "mod", "click 64", "click x", "castle"} {
		rec := &recorder{}
		m := press(t, NewModel(rec.submit), runes("i"))
		m.input.SetValue(line)
		m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if len(rec.cmds) != 0 {
			t.Errorf("%q submitted %+v", line, rec.cmds)
		}
		if last := m.logLines[len(m.logLines)-1]; strings.HasPrefix(last, "> ") {
			t.Errorf("%q: no diagnostic logged", line)
		}
	}
}

func TestViewMsgRenders(t *testing.T) {
	b := board.New(board.Mapper{})
	b.RenderPosition(board.StartingPosition)
	b.Apply([]board.Index{20, 28}, board.Highlight)
	ctrl := interaction.NewController(b, nil)

	m := NewModel((&recorder{}).submit)
	m = press(t, m, viewMsg(ctrl.View()))
	out := m.View()
	for _, want := range []string{"r  n  b  q  k  b  n  r", "a  b  c  d  e  f  g  h", "8 |", "1 |", "white at bottom"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBoardFlipped(t *testing.T) {
	b := board.New(board.Mapper{Orientation: board.BlackBottom})
	b.RenderPosition(board.StartingPosition)
	out := RenderBoard(b.Snapshot(), -1)
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[0], "h  g  f  e  d  c  b  a") {
		t.Errorf("file header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1 |") || !strings.Contains(lines[1], "R  N  B  K  Q  B  N  R") {
		t.Errorf("top row = %q", lines[1])
	}
}
