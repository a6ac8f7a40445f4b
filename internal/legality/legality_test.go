package legality

import (
	"testing"

	"github.com/nypblockchain/pythongame/internal/grammar"
)

func appendPos(seq []string) int { return len(seq) }

func TestFirstCardMustStartAStatement(t *testing.T) {
	if !CanInsert("for", nil, 0, Context{}).Legal {
		t.Error("\"for\" should open an empty sequence")
	}
	if !CanInsert("if", nil, 0, Context{}).Legal {
		t.Error("\"if\" should open an empty sequence")
	}
	if !CanInsert("x", nil, 0, Context{}).Legal {
		t.Error("\"x\" should open an empty sequence (assignment target)")
	}
	v := CanInsert("in", nil, 0, Context{})
	if v.Legal {
		t.Error("\"in\" should not open an empty sequence")
	}
	if v.Reason == "" {
		t.Error("rejection should carry a reason")
	}
}

func TestBuildingAForLoop(t *testing.T) {
	seq := []string{}
	for _, card := range []string{"for", "i", "in", "range", "(", "10", ")", ":"} {
		ctx := Context{OpenParenCount: grammar.OpenParenCount(seq)}
		v := CanInsert(card, seq, appendPos(seq), ctx)
		if !v.Legal {
			t.Fatalf("expected %q to be legal after %v: %s", card, seq, v.Reason)
		}
		seq = append(seq, card)
	}
}

func TestVariableCannotFollowVariable(t *testing.T) {
	v := CanInsert("x", []string{"for", "i"}, 2, Context{})
	if v.Legal {
		t.Fatal("\"x\" after \"for i\" should be illegal")
	}
	if v.Reason == "" {
		t.Error("rejection should carry a reason")
	}
	if len(v.SuggestedCategories) == 0 {
		t.Error("category rejection should suggest alternatives")
	}
}

func TestCloseParenNeedsOpenParen(t *testing.T) {
	// No unbalanced open paren anywhere: structurally impossible.
	v := CanInsert(")", []string{"x", "=", "1"}, 3, Context{OpenParenCount: 0})
	if v.Legal {
		t.Fatal("\")\" with nothing open should be illegal")
	}

	seq := []string{"print", "(", "x"}
	v = CanInsert(")", seq, 3, Context{OpenParenCount: 1})
	if !v.Legal {
		t.Fatalf("\")\" closing a call should be legal: %s", v.Reason)
	}
}

func TestSpecialCardsAlwaysLegal(t *testing.T) {
	for _, name := range []string{"Draw 2", "Discard 2", "Skip", "Wild"} {
		if !CanInsert(name, []string{"for", "i"}, 2, Context{}).Legal {
			t.Errorf("%q should be legal mid-sequence", name)
		}
		if !CanInsert(name, nil, 0, Context{}).Legal {
			t.Errorf("%q should be legal on an empty sequence", name)
		}
	}
}

func TestWildBridgeWaivesCategoryOnly(t *testing.T) {
	// "x" after "for i" stays illegal even with the bridge: the
	// grammar is authoritative and "for i x" can never become valid.
	v := CanInsert("x", []string{"for", "i"}, 2, Context{WildBridgeActive: true})
	if v.Legal {
		t.Fatal("wild bridge must not override the grammar")
	}
	// With the bridge the rejection is grammatical, not categorical.
	if len(v.SuggestedCategories) != 0 {
		t.Error("grammar rejection should not carry category suggestions")
	}
}

func TestColonResetsStatementBoundary(t *testing.T) {
	seq := []string{"if", "True", ":"}
	v := CanInsert("print", seq, 3, Context{})
	if !v.Legal {
		t.Fatalf("statement keyword after a colon should be legal: %s", v.Reason)
	}
	v = CanInsert("else", seq, 3, Context{})
	if !v.Legal {
		t.Fatalf("\"else\" directly after \"if ... :\" should be legal: %s", v.Reason)
	}
}

func TestMidSequenceInsertion(t *testing.T) {
	// x = 1  ->  x = 1 + 1 by inserting "+" then another "1" is the
	// usual route; inserting a bare value before the existing one is
	// not, because "1" cannot follow a value.
	seq := []string{"x", "=", "1"}
	v := CanInsert("10", seq, 2, Context{})
	if v.Legal {
		t.Fatal("inserting a value before another value should be illegal")
	}

	// Inserting "not" before the condition keeps both sides happy:
	// while True:  ->  while not True:
	seq = []string{"while", "True", ":"}
	v = CanInsert("not", seq, 1, Context{})
	if !v.Legal {
		t.Fatalf("inserting \"not\" before the condition should be legal: %s", v.Reason)
	}
}

func TestUnknownCardRejected(t *testing.T) {
	if CanInsert("import", nil, 0, Context{}).Legal {
		t.Error("unknown card should be rejected")
	}
}

func TestPositionOutOfRange(t *testing.T) {
	if CanInsert("x", []string{"for"}, 5, Context{}).Legal {
		t.Error("out-of-range position should be rejected")
	}
	if CanInsert("x", []string{"for"}, -1, Context{}).Legal {
		t.Error("negative position should be rejected")
	}
}

func TestPlayableCards(t *testing.T) {
	hand := []string{"in", "i", "Skip", "x", "i"}
	got := PlayableCards(hand, []string{"for"}, Context{})

	want := map[string]int{"i": 2, "Skip": 1, "x": 1}
	counts := make(map[string]int)
	for _, c := range got {
		counts[c]++
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("expected %d playable %q, got %d", n, name, counts[name])
		}
	}
	if counts["in"] != 0 {
		t.Error("\"in\" should not be playable directly after \"for\"")
	}
}
