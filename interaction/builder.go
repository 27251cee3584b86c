package interaction

// Builder accumulates a Betza string from a modifier prefix and a range suffix.
// Tokens are never validated here.
type Builder struct {
	rangeToken     string
	modifierTokens string
}

func (b *Builder) Reset() {
	b.rangeToken = ""
	b.modifierTokens = ""
}

// AppendRange replaces the range token; only one range selector is active at a time.
func (b *Builder) AppendRange(token string) { b.rangeToken = token }

func (b *Builder) AppendModifier(token string) { b.modifierTokens += token }

func (b *Builder) Range() string { return b.rangeToken }

func (b *Builder) Modifiers() string { return b.modifierTokens }

func (b *Builder) Candidate() string { return b.modifierTokens + b.rangeToken }

// Take returns the candidate and resets the builder.
func (b *Builder) Take() string {
	c := b.Candidate()
	b.Reset()
	return c
}

type BuilderView struct {
	Range     string `json:"range"`
	Modifiers string `json:"modifiers"`
	Candidate string `json:"candidate"`
}

func (b *Builder) View() BuilderView {
	return BuilderView{Range: b.rangeToken, Modifiers: b.modifierTokens, Candidate: b.Candidate()}
}
