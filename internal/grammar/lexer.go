package grammar

import (
	"errors"
	"strings"
)

type tokenKind uint8

const (
	tokName tokenKind = iota
	tokNumber
	tokString
	tokSymbol // operators and punctuation
	tokNewline
	tokIndent
	tokDedent
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

var errLex = errors.New("lex error")

// symbols holds all recognized operator/punctuation spellings, longest
// first so two-character operators win over their one-character prefixes.
var symbols = []string{
	"==", "!=", "<=", ">=", "+=",
	"+", "-", "*", "/", "%", "<", ">", "=",
	"(", ")", ":", ",",
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lex converts rendered source text into a flat token stream with
// INDENT/DEDENT bracketing, in the style of an off-side-rule language.
// Each indentation level is one indentUnit; a jump of more than one
// level is an error.
func lex(src string) ([]token, error) {
	var toks []token
	depth := 0

	for _, rawLine := range strings.Split(src, "\n") {
		if strings.TrimSpace(rawLine) == "" {
			continue
		}
		level := 0
		line := rawLine
		for strings.HasPrefix(line, indentUnit) {
			level++
			line = line[len(indentUnit):]
		}
		if strings.HasPrefix(line, " ") {
			return nil, errLex
		}
		if level > depth+1 {
			return nil, errLex
		}
		for depth < level {
			toks = append(toks, token{kind: tokIndent})
			depth++
		}
		for depth > level {
			toks = append(toks, token{kind: tokDedent})
			depth--
		}

		lineToks, err := lexLine(line)
		if err != nil {
			return nil, err
		}
		toks = append(toks, lineToks...)
		toks = append(toks, token{kind: tokNewline})
	}
	for depth > 0 {
		toks = append(toks, token{kind: tokDedent})
		depth--
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

func lexLine(line string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(line) {
		b := line[i]
		switch {
		case b == ' ':
			i++
		case isIdentStart(b):
			j := i + 1
			for j < len(line) && isIdentPart(line[j]) {
				j++
			}
			toks = append(toks, token{kind: tokName, text: line[i:j]})
			i = j
		case isDigit(b):
			j := i + 1
			for j < len(line) && isDigit(line[j]) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: line[i:j]})
			i = j
		case b == '"':
			j := strings.IndexByte(line[i+1:], '"')
			if j < 0 {
				return nil, errLex
			}
			toks = append(toks, token{kind: tokString, text: line[i : i+j+2]})
			i += j + 2
		case b == '[':
			// Only the empty-list literal exists in the subset.
			if i+1 >= len(line) || line[i+1] != ']' {
				return nil, errLex
			}
			toks = append(toks, token{kind: tokSymbol, text: "[]"})
			i += 2
		default:
			matched := false
			for _, sym := range symbols {
				if strings.HasPrefix(line[i:], sym) {
					toks = append(toks, token{kind: tokSymbol, text: sym})
					i += len(sym)
					matched = true
					break
				}
			}
			if !matched {
				return nil, errLex
			}
		}
	}
	return toks, nil
}
