package grammar

import (
	"testing"
)

func TestRenderSimpleAssignment(t *testing.T) {
	got := Render([]string{"x", "=", "1"})
	want := "x = 1\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderCallSpacing(t *testing.T) {
	cases := []struct {
		tokens []string
		want   string
	}{
		// Callee and open paren stay tight; arguments get no padding.
		{[]string{"print", "(", "x", ")"}, "print(x)\n"},
		{[]string{"len", "(", "[]", ")"}, "len([])\n"},
		// Operators and keywords are spaced.
		{[]string{"x", "=", "1", "+", "10"}, "x = 1 + 10\n"},
		{[]string{"x", "=", "not", "True"}, "x = not True\n"},
	}
	for _, tc := range cases {
		if got := Render(tc.tokens); got != tc.want {
			t.Errorf("Render(%v): expected %q, got %q", tc.tokens, tc.want, got)
		}
	}
}

func TestRenderTrailingBlockGetsPlaceholder(t *testing.T) {
	got := Render([]string{"for", "i", "in", "range", "(", "10", ")", ":"})
	want := "for i in range(10):\n    pass\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderBlockBodyIndents(t *testing.T) {
	got := Render([]string{"if", "True", ":", "x", "=", "1"})
	want := "if True:\n    x = 1\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderHeaderAfterColonIsSibling(t *testing.T) {
	// An else played straight after the if's colon abandons the block:
	// the if gets a placeholder body and the else sits at the same
	// indent level.
	got := Render([]string{"if", "True", ":", "else", ":"})
	want := "if True:\n    pass\nelse:\n    pass\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderFiltersSpecials(t *testing.T) {
	withSpecials := Render([]string{"x", "Skip", "=", "Wild", "1", "Draw 2"})
	without := Render([]string{"x", "=", "1"})
	if withSpecials != without {
		t.Fatalf("specials must not affect rendering: %q vs %q", withSpecials, without)
	}
}

func TestRenderDeterministic(t *testing.T) {
	tokens := []string{"for", "i", "in", "range", "(", "10", ")", ":", "print", "(", "i", ")"}
	first := Render(tokens)
	for i := 0; i < 5; i++ {
		if got := Render(tokens); got != first {
			t.Fatalf("render is not deterministic: %q vs %q", first, got)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestHasTrailingOpenBlock(t *testing.T) {
	if !HasTrailingOpenBlock([]string{"if", "True", ":"}) {
		t.Error("colon-terminated sequence should report an open block")
	}
	// Trailing specials are ignored when finding the last real token.
	if !HasTrailingOpenBlock([]string{"if", "True", ":", "Skip"}) {
		t.Error("trailing special should not hide the open block")
	}
	if HasTrailingOpenBlock([]string{"x", "=", "1"}) {
		t.Error("closed statement should not report an open block")
	}
	if HasTrailingOpenBlock(nil) {
		t.Error("empty sequence should not report an open block")
	}
}

func TestOpenParenCount(t *testing.T) {
	cases := []struct {
		tokens []string
		want   int
	}{
		{nil, 0},
		{[]string{"print", "("}, 1},
		{[]string{"print", "(", "x", ")"}, 0},
		{[]string{"(", "(", ")"}, 1},
		// Extra close parens clamp at zero instead of going negative.
		{[]string{")", ")", "("}, 1},
	}
	for _, tc := range cases {
		if got := OpenParenCount(tc.tokens); got != tc.want {
			t.Errorf("OpenParenCount(%v): expected %d, got %d", tc.tokens, tc.want, got)
		}
	}
}
