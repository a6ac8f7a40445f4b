package grammar

import (
	"fmt"
)

// The parser is a plain recursive descent over the lexed stream.
//
//	program    = statement* EOF
//	statement  = forStmt | whileStmt | ifStmt | defStmt | classStmt
//	           | tryStmt | returnStmt | "pass" NL | assignment | exprStmt
//	forStmt    = "for" NAME "in" expr ":" block
//	whileStmt  = "while" expr ":" block
//	ifStmt     = "if" expr ":" block ("elif" expr ":" block)*
//	             ("else" ":" block)?
//	defStmt    = "def" NAME "(" ")" ":" block
//	classStmt  = "class" NAME ":" block
//	tryStmt    = "try" ":" block ("except" ":" block)?
//	returnStmt = "return" expr? NL
//	assignment = NAME ("=" | "+=") expr NL
//	exprStmt   = expr NL
//	block      = NL INDENT statement+ DEDENT
//	expr       = andExpr ("or" andExpr)*
//	andExpr    = notExpr ("and" notExpr)*
//	notExpr    = "not" notExpr | comparison
//	comparison = arith (cmpOp arith)*
//	arith      = term (("+" | "-") term)*
//	term       = primary (("*" | "/" | "%") primary)*
//	primary    = NUMBER | STRING | "[]" | "True" | "False" | "None"
//	           | NAME ("(" argList ")")? | "(" expr ")"
//	argList    = (expr ("," expr)*)?

var reserved = map[string]bool{
	"for": true, "while": true, "if": true, "elif": true, "else": true,
	"def": true, "class": true, "try": true, "except": true,
	"return": true, "pass": true, "in": true, "not": true,
	"and": true, "or": true, "lambda": true,
	"True": true, "False": true, "None": true,
}

var cmpOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

type parser struct {
	toks []token
	pos  int
}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

// ParseProgram reports whether the rendered source text is a
// well-formed program under the mini-language subset.
func ParseProgram(src string) error {
	toks, err := lex(src)
	if err != nil {
		return err
	}
	p := &parser{toks: toks}
	for !p.at(tokEOF) {
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) at(kind tokenKind) bool { return p.cur().kind == kind }

func (p *parser) atText(text string) bool {
	c := p.cur()
	return (c.kind == tokName || c.kind == tokSymbol) && c.text == text
}

func (p *parser) advance() token {
	t := p.cur()
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(text string) error {
	if !p.atText(text) {
		return p.fail("expected %q", text)
	}
	p.advance()
	return nil
}

func (p *parser) expectKind(kind tokenKind, what string) error {
	if !p.at(kind) {
		return p.fail("expected %s", what)
	}
	p.advance()
	return nil
}

func (p *parser) fail(format string, args ...interface{}) error {
	return &parseError{msg: fmt.Sprintf(format, args...)}
}

// name matches an identifier that is not a reserved word.
func (p *parser) name() (string, error) {
	c := p.cur()
	if c.kind != tokName || reserved[c.text] {
		return "", p.fail("expected name, got %q", c.text)
	}
	p.advance()
	return c.text, nil
}

func (p *parser) statement() error {
	c := p.cur()
	if c.kind == tokName {
		switch c.text {
		case "for":
			return p.forStmt()
		case "while":
			return p.whileStmt()
		case "if":
			return p.ifStmt()
		case "def":
			return p.defStmt()
		case "class":
			return p.classStmt()
		case "try":
			return p.tryStmt()
		case "return":
			return p.returnStmt()
		case "pass":
			p.advance()
			return p.expectKind(tokNewline, "newline")
		case "elif", "else", "except":
			return p.fail("%q without matching header", c.text)
		}
		// Assignment: NAME ("=" | "+=") expr.
		if !reserved[c.text] && p.pos+1 < len(p.toks) {
			next := p.toks[p.pos+1]
			if next.kind == tokSymbol && (next.text == "=" || next.text == "+=") {
				p.advance()
				p.advance()
				if err := p.expr(); err != nil {
					return err
				}
				return p.expectKind(tokNewline, "newline")
			}
		}
	}
	// Expression statement.
	if err := p.expr(); err != nil {
		return err
	}
	return p.expectKind(tokNewline, "newline")
}

func (p *parser) forStmt() error {
	p.advance()
	if _, err := p.name(); err != nil {
		return err
	}
	if err := p.expect("in"); err != nil {
		return err
	}
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	return p.block()
}

func (p *parser) whileStmt() error {
	p.advance()
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	return p.block()
}

func (p *parser) ifStmt() error {
	p.advance()
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	if err := p.block(); err != nil {
		return err
	}
	for p.atText("elif") {
		p.advance()
		if err := p.expr(); err != nil {
			return err
		}
		if err := p.expect(":"); err != nil {
			return err
		}
		if err := p.block(); err != nil {
			return err
		}
	}
	if p.atText("else") {
		p.advance()
		if err := p.expect(":"); err != nil {
			return err
		}
		return p.block()
	}
	return nil
}

func (p *parser) defStmt() error {
	p.advance()
	if _, err := p.name(); err != nil {
		return err
	}
	if err := p.expect("("); err != nil {
		return err
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	return p.block()
}

func (p *parser) classStmt() error {
	p.advance()
	if _, err := p.name(); err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	return p.block()
}

func (p *parser) tryStmt() error {
	p.advance()
	if err := p.expect(":"); err != nil {
		return err
	}
	if err := p.block(); err != nil {
		return err
	}
	if p.atText("except") {
		p.advance()
		if err := p.expect(":"); err != nil {
			return err
		}
		return p.block()
	}
	return nil
}

func (p *parser) returnStmt() error {
	p.advance()
	if p.at(tokNewline) {
		p.advance()
		return nil
	}
	if err := p.expr(); err != nil {
		return err
	}
	return p.expectKind(tokNewline, "newline")
}

func (p *parser) block() error {
	if err := p.expectKind(tokNewline, "newline"); err != nil {
		return err
	}
	if err := p.expectKind(tokIndent, "indented block"); err != nil {
		return err
	}
	if err := p.statement(); err != nil {
		return err
	}
	for !p.at(tokDedent) && !p.at(tokEOF) {
		if err := p.statement(); err != nil {
			return err
		}
	}
	return p.expectKind(tokDedent, "dedent")
}

func (p *parser) expr() error {
	if err := p.andExpr(); err != nil {
		return err
	}
	for p.atText("or") {
		p.advance()
		if err := p.andExpr(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) andExpr() error {
	if err := p.notExpr(); err != nil {
		return err
	}
	for p.atText("and") {
		p.advance()
		if err := p.notExpr(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) notExpr() error {
	if p.atText("not") {
		p.advance()
		return p.notExpr()
	}
	return p.comparison()
}

func (p *parser) comparison() error {
	if err := p.arith(); err != nil {
		return err
	}
	for p.cur().kind == tokSymbol && cmpOps[p.cur().text] {
		p.advance()
		if err := p.arith(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) arith() error {
	if err := p.term(); err != nil {
		return err
	}
	for p.atText("+") || p.atText("-") {
		p.advance()
		if err := p.term(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) term() error {
	if err := p.primary(); err != nil {
		return err
	}
	for p.atText("*") || p.atText("/") || p.atText("%") {
		p.advance()
		if err := p.primary(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) primary() error {
	c := p.cur()
	switch c.kind {
	case tokNumber, tokString:
		p.advance()
		return nil
	case tokSymbol:
		if c.text == "[]" {
			p.advance()
			return nil
		}
		if c.text == "(" {
			p.advance()
			if err := p.expr(); err != nil {
				return err
			}
			return p.expect(")")
		}
	case tokName:
		switch c.text {
		case "True", "False", "None":
			p.advance()
			return nil
		}
		if reserved[c.text] {
			return p.fail("unexpected keyword %q", c.text)
		}
		p.advance()
		// Optional call suffix.
		if p.atText("(") {
			p.advance()
			if p.atText(")") {
				p.advance()
				return nil
			}
			if err := p.expr(); err != nil {
				return err
			}
			for p.atText(",") {
				p.advance()
				if err := p.expr(); err != nil {
					return err
				}
			}
			return p.expect(")")
		}
		return nil
	}
	return p.fail("unexpected token %q", c.text)
}
