package interaction

import "github.com/walterschell/betza-board/board"

// Command is one user event fed to the Controller.
type Command interface {
	command()
}

type SquareClicked struct{ Slot board.Slot }

// NotationSubmitted replaces the notation field with Notation and queries it.
type NotationSubmitted struct{ Notation string }

type BuilderReset struct{}

// BuilderRange replaces the range token.
type BuilderRange struct{ Token string }

// BuilderModifier appends to the modifier tokens.
type BuilderModifier struct{ Token string }

type BuilderCommit struct{}

// Flipped toggles the board orientation.
type Flipped struct{}

func (SquareClicked) command()     {}
func (NotationSubmitted) command() {}
func (BuilderReset) command()      {}
func (BuilderRange) command()      {}
func (BuilderModifier) command()   {}
func (BuilderCommit) command()     {}
func (Flipped) command()           {}
