package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/walterschell/betza-board/board"
)

var (
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("22"))
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("24"))
	bothStyle      = lipgloss.NewStyle().Background(lipgloss.Color("90"))
)

// RenderBoard draws v in display order, top row first. File and rank labels
// come from the squares' indices so a flipped board is labelled correctly.
func RenderBoard(v board.View, cursor board.Slot) string {
	if len(v.Squares) != board.NumSquares {
		return "(no board yet)\n"
	}

	var b strings.Builder
	files := "   "
	for col := 0; col < board.Files; col++ {
		files += " " + string(rune('a'+v.Squares[col].Index%board.Files)) + " "
	}
	b.WriteString(files + "\n")

	for row := 0; row < board.Ranks; row++ {
		rank := v.Squares[row*board.Files].Index/board.Files + 1
		b.WriteByte(byte('0' + rank))
		b.WriteString(" |")
		for col := 0; col < board.Files; col++ {
			s := row*board.Files + col
			b.WriteString(cell(v.Squares[s], board.Slot(s) == cursor))
		}
		b.WriteString("|\n")
	}
	return b.String()
}

// cell is three columns wide. White pieces are upper case.
func cell(sq board.SquareView, isCursor bool) string {
	glyph := "."
	if sq.Piece != "" {
		glyph = sq.Piece
	}

	text := " " + glyph + " "
	if isCursor {
		text = "[" + glyph + "]"
	}

	switch {
	case sq.Selected && sq.Highlighted:
		return bothStyle.Render(text)
	case sq.Highlighted:
		return highlightStyle.Render(text)
	case sq.Selected:
		return selectedStyle.Render(text)
	}
	return text
}
