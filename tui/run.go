package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/walterschell/betza-board/interaction"
)

// Run drives a Session against b from the terminal until the user quits.
func Run(ctx context.Context, b interaction.Backend, opts ...interaction.SessionOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sess *interaction.Session
	p := tea.NewProgram(NewModel(func(cmd interaction.Command) error {
		return sess.Submit(ctx, cmd)
	}), tea.WithAltScreen(), tea.WithContext(ctx))

	opts = append(opts, interaction.OnChange(func(v interaction.View) { p.Send(viewMsg(v)) }))
	sess = interaction.NewSession(b, opts...)
	go sess.Run(ctx)

	_, err := p.Run()
	return err
}
