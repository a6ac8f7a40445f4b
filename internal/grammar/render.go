// Package grammar renders card token sequences to source text and
// decides whether a sequence is a complete program, or an extendable
// prefix of one, under a self-contained mini-language subset. It is
// the authoritative validity filter for card plays; category
// adjacency rules are only a hinting layer on top of it.
package grammar

import (
	"strings"

	"github.com/nypblockchain/pythongame/internal/catalog"
)

const indentUnit = "    "

// placeholderBody is the no-op line synthesized for a block whose body
// has not been played yet. It keeps mid-game sequences parseable; a
// trailing open block is still not a complete program.
const placeholderBody = "pass"

// headerKeywords start a new statement. When one of these appears
// directly after a colon it is a sibling statement, not a block body:
// the indent stays at the pre-colon level and the abandoned block gets
// a placeholder body.
var headerKeywords = map[string]bool{
	"for": true, "while": true, "if": true, "elif": true, "else": true,
	"def": true, "class": true, "try": true, "except": true,
}

// Render converts a token sequence to source text. It is pure and
// deterministic: the same tokens always yield identical text. Special
// cards are filtered out; spacing follows a fixed table (no space
// after an open paren, none before close paren/colon/comma, none
// between a callee and its open paren, spaces everywhere else).
func Render(tokens []string) string {
	var out strings.Builder
	var line strings.Builder

	indent := 0
	lineIndent := 0
	pendingBlock := false

	writeLine := func(level int, text string) {
		for i := 0; i < level; i++ {
			out.WriteString(indentUnit)
		}
		out.WriteString(text)
		out.WriteByte('\n')
	}
	flush := func() {
		if line.Len() > 0 {
			writeLine(lineIndent, line.String())
			line.Reset()
		}
	}

	var prev string
	for _, tok := range tokens {
		if catalog.IsSpecial(tok) {
			continue
		}
		if pendingBlock {
			if headerKeywords[tok] {
				writeLine(indent+1, placeholderBody)
			} else {
				indent++
			}
			pendingBlock = false
		}
		if line.Len() == 0 {
			lineIndent = indent
		} else if needSpace(prev, tok) {
			line.WriteByte(' ')
		}
		line.WriteString(tok)
		prev = tok

		if tok == ":" {
			flush()
			pendingBlock = true
			prev = ""
		}
	}
	flush()
	if pendingBlock {
		writeLine(indent+1, placeholderBody)
	}
	return out.String()
}

// needSpace decides whether a space separates prev and tok on a line.
func needSpace(prev, tok string) bool {
	if prev == "(" {
		return false
	}
	switch tok {
	case ")", ":", ",":
		return false
	case "(":
		// print( / x( stay tight; "in (", "not (", "+ (" get a space.
		switch catalog.CategoryOf(prev) {
		case catalog.CategoryFunction, catalog.CategoryVariable:
			return false
		}
		return true
	}
	return true
}

// HasTrailingOpenBlock reports whether the last non-special token is a
// colon, i.e. the sequence ends with a block header awaiting a body.
func HasTrailingOpenBlock(tokens []string) bool {
	for i := len(tokens) - 1; i >= 0; i-- {
		if catalog.IsSpecial(tokens[i]) {
			continue
		}
		return tokens[i] == ":"
	}
	return false
}

// OpenParenCount returns the number of unbalanced open parentheses in
// the sequence. Never negative; extra close parens clamp at zero.
func OpenParenCount(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		switch tok {
		case "(":
			n++
		case ")":
			if n > 0 {
				n--
			}
		}
	}
	return n
}

// StripSpecials returns the sequence with special cards removed.
func StripSpecials(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !catalog.IsSpecial(tok) {
			out = append(out, tok)
		}
	}
	return out
}
