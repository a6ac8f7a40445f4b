package grammar

import "github.com/nypblockchain/pythongame/internal/catalog"

// IsSyntacticallyValid reports whether the sequence, rendered with
// placeholder bodies for open blocks, parses cleanly. This is the
// mid-game criterion: a trailing block header still counts.
func IsSyntacticallyValid(tokens []string) bool {
	clean := StripSpecials(tokens)
	if len(clean) == 0 {
		return true
	}
	return ParseProgram(Render(clean)) == nil
}

// IsCompleteProgram reports whether the sequence parses cleanly AND
// does not rely on a synthesized body for a trailing open block. The
// placeholder is a rendering aid, not a played card.
func IsCompleteProgram(tokens []string) bool {
	clean := StripSpecials(tokens)
	if len(clean) == 0 {
		return false
	}
	return IsSyntacticallyValid(clean) && !HasTrailingOpenBlock(clean)
}

// completionSuffix is one grammatically-motivated way to finish an
// incomplete prefix. The battery below covers loop headers,
// conditional headers, dangling assignments and operators, dangling
// membership "in", function/class headers and return statements.
// Unbalanced parentheses are closed before each attempt.
var completionBattery = [][]string{
	{":"},                                      // close a block header
	{"0"},                                      // dangling operator / assignment / return
	{"True"},                                   // dangling boolean context
	{"0", ":"},                                 // finish a comparison header: while x < |0:|
	{"True", ":"},                              // bare while/if/elif
	{"x"},                                      // dangling unary (not, lambda-less contexts)
	{"x", ":"},                                 // bare class header
	{"x", "in", "range", "(", "10", ")", ":"},  // bare for
	{"in", "range", "(", "10", ")", ":"},       // for NAME
	{"range", "(", "10", ")", ":"},             // for NAME in
	{"(", ")", ":"},                            // def NAME
	{"x", "(", ")", ":"},                       // bare def
}

// CanExtendToValid reports whether tokens followed by candidate is a
// plausible prefix: either already valid, or some completion from the
// fixed battery makes it parse. Special candidates are always
// acceptable since they never enter the played sequence.
func CanExtendToValid(tokens []string, candidate string) bool {
	prefix := StripSpecials(tokens)
	if candidate != "" {
		if catalog.IsSpecial(candidate) {
			return true
		}
		prefix = append(append([]string{}, prefix...), candidate)
	}
	if tryWithClosers(prefix, nil) {
		return true
	}
	for _, suffix := range completionBattery {
		if tryWithClosers(prefix, suffix) {
			return true
		}
	}
	return false
}

// tryWithClosers checks prefix+suffix as-is, then with unbalanced
// parentheses closed before the suffix, after it, and after it with a
// trailing colon (for headers whose condition sits in parentheses).
func tryWithClosers(prefix, suffix []string) bool {
	direct := append(append([]string{}, prefix...), suffix...)
	if IsSyntacticallyValid(direct) {
		return true
	}
	if open := OpenParenCount(prefix); open > 0 {
		closedFirst := append([]string{}, prefix...)
		closedFirst = append(closedFirst, closers(open)...)
		closedFirst = append(closedFirst, suffix...)
		if IsSyntacticallyValid(closedFirst) {
			return true
		}
	}
	if open := OpenParenCount(direct); open > 0 {
		closedAfter := append(append([]string{}, direct...), closers(open)...)
		if IsSyntacticallyValid(closedAfter) {
			return true
		}
		if IsSyntacticallyValid(append(closedAfter, ":")) {
			return true
		}
	}
	return false
}

func closers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = ")"
	}
	return out
}
