package interaction

import "testing"

func TestBuilderRangeReplaces(t *testing.T) {
	var b Builder
	b.AppendRange("N")
	b.AppendRange("B")
	if b.Range() != "B" {
		t.Errorf("range = %q, want B", b.Range())
	}
}

func TestBuilderModifiersAccumulate(t *testing.T) {
	var b Builder
	b.AppendModifier("f")
	b.AppendModifier("r")
	b.AppendRange("W")
	if b.Modifiers() != "fr" {
		t.Errorf("modifiers = %q, want fr", b.Modifiers())
	}
	if b.Candidate() != "frW" {
		t.Errorf("candidate = %q, want frW", b.Candidate())
	}
}

func TestBuilderTake(t *testing.T) {
	var b Builder
	b.AppendModifier("m")
	b.AppendRange("R")
	if got := b.Take(); got != "mR" {
		t.Errorf("Take() = %q", got)
	}
	if v := b.View(); v != (BuilderView{}) {
		t.Errorf("builder not reset: %+v", v)
	}
}
