// Package catalog defines the static card set: every card's syntactic
// category, point value, legal predecessors, deck count and optional
// special effect. It has no mutable state; deck shuffling is the
// caller's responsibility so tests can inject a fixed permutation.
package catalog

// Category is the coarse syntactic class assigned to each card.
type Category uint8

const (
	CategoryStart Category = iota // virtual predecessor of an empty sequence
	CategoryLoop
	CategoryVariable
	CategoryKeyword
	CategoryFunction
	CategoryValue
	CategoryOperator
	CategoryOpenParen
	CategoryCloseParen
	CategoryColon
	CategoryComma // reserved; no card currently carries it
	CategorySpecial
)

func (c Category) String() string {
	switch c {
	case CategoryStart:
		return "START"
	case CategoryLoop:
		return "LOOP"
	case CategoryVariable:
		return "VARIABLE"
	case CategoryKeyword:
		return "KEYWORD"
	case CategoryFunction:
		return "FUNCTION"
	case CategoryValue:
		return "VALUE"
	case CategoryOperator:
		return "OPERATOR"
	case CategoryOpenParen:
		return "SYNTAX_OPEN"
	case CategoryCloseParen:
		return "SYNTAX_CLOSE"
	case CategoryColon:
		return "SYNTAX_COLON"
	case CategoryComma:
		return "SYNTAX_COMMA"
	case CategorySpecial:
		return "SPECIAL"
	}
	return "UNKNOWN"
}

// Effect is the closed set of special-card behaviors. Matched
// exhaustively by the session so the compiler flags missing cases
// when a new effect is added.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectDrawTwo
	EffectDiscardTwo
	EffectSkip
	EffectWild
)

func (e Effect) String() string {
	switch e {
	case EffectDrawTwo:
		return "draw_2"
	case EffectDiscardTwo:
		return "discard_2"
	case EffectSkip:
		return "skip"
	case EffectWild:
		return "wild"
	}
	return ""
}

// Card is one immutable catalog entry.
type Card struct {
	Name        string
	Category    Category
	Points      int
	CanFollow   []Category // legal predecessor categories; empty for SPECIAL
	Effect      Effect
	DeckCount   int
	Description string
}

// IsSpecial reports whether the card is a special action card.
func (c Card) IsSpecial() bool { return c.Category == CategorySpecial }

// Follows reports whether the card may appear after a token of the
// given category under the adjacency rules.
func (c Card) Follows(prev Category) bool {
	for _, cat := range c.CanFollow {
		if cat == prev {
			return true
		}
	}
	return false
}

var afterExpr = []Category{CategoryValue, CategoryVariable, CategoryCloseParen}
var afterStmtStart = []Category{CategoryStart, CategoryColon}
var afterOperand = []Category{CategoryKeyword, CategoryOperator, CategoryOpenParen}
var anywhere = []Category{
	CategoryStart, CategoryLoop, CategoryKeyword, CategoryFunction,
	CategoryValue, CategoryVariable, CategoryOperator, CategoryOpenParen,
	CategoryCloseParen, CategoryColon,
}

// cards holds the full catalog in its canonical order. BuildDeck and
// Names iterate this slice so the pre-shuffle deck order is stable.
var cards = []Card{
	// Loops (uncommon, 2 points).
	{Name: "for", Category: CategoryLoop, Points: 2, CanFollow: afterStmtStart, DeckCount: 3, Description: "For loop - iterates over a sequence"},
	{Name: "while", Category: CategoryLoop, Points: 2, CanFollow: afterStmtStart, DeckCount: 2, Description: "While loop - repeats while condition is true"},

	// Variables (common, 1 point).
	{Name: "x", Category: CategoryVariable, Points: 1, CanFollow: []Category{CategoryLoop, CategoryKeyword, CategoryOperator, CategoryOpenParen}, DeckCount: 4, Description: "Common variable name"},
	{Name: "i", Category: CategoryVariable, Points: 1, CanFollow: []Category{CategoryLoop, CategoryKeyword, CategoryOperator, CategoryOpenParen}, DeckCount: 4, Description: "Iterator variable"},
	{Name: "n", Category: CategoryVariable, Points: 1, CanFollow: []Category{CategoryLoop, CategoryKeyword, CategoryOperator, CategoryOpenParen}, DeckCount: 3, Description: "Number variable"},
	{Name: "item", Category: CategoryVariable, Points: 1, CanFollow: []Category{CategoryLoop, CategoryKeyword, CategoryOperator, CategoryOpenParen}, DeckCount: 3, Description: "Item in a collection"},
	{Name: "result", Category: CategoryVariable, Points: 1, CanFollow: []Category{CategoryLoop, CategoryKeyword, CategoryOperator, CategoryOpenParen}, DeckCount: 2, Description: "Result variable"},

	// Keywords (uncommon, 2 points).
	{Name: "in", Category: CategoryKeyword, Points: 2, CanFollow: []Category{CategoryVariable}, DeckCount: 4, Description: "Membership test / iteration"},
	{Name: "if", Category: CategoryKeyword, Points: 2, CanFollow: afterStmtStart, DeckCount: 3, Description: "Conditional statement"},
	{Name: "else", Category: CategoryKeyword, Points: 2, CanFollow: []Category{CategoryColon}, DeckCount: 2, Description: "Alternative branch"},
	{Name: "elif", Category: CategoryKeyword, Points: 2, CanFollow: []Category{CategoryColon}, DeckCount: 2, Description: "Else-if branch"},
	{Name: "not", Category: CategoryKeyword, Points: 2, CanFollow: afterOperand, DeckCount: 2, Description: "Logical negation"},

	// Rare keywords (3 points).
	{Name: "def", Category: CategoryKeyword, Points: 3, CanFollow: afterStmtStart, DeckCount: 2, Description: "Function definition"},
	{Name: "return", Category: CategoryKeyword, Points: 3, CanFollow: afterStmtStart, DeckCount: 2, Description: "Return statement"},
	{Name: "lambda", Category: CategoryKeyword, Points: 3, CanFollow: afterOperand, DeckCount: 1, Description: "Anonymous function"},
	{Name: "class", Category: CategoryKeyword, Points: 3, CanFollow: afterStmtStart, DeckCount: 1, Description: "Class definition"},
	{Name: "try", Category: CategoryKeyword, Points: 3, CanFollow: afterStmtStart, DeckCount: 1, Description: "Exception handling"},
	{Name: "except", Category: CategoryKeyword, Points: 3, CanFollow: []Category{CategoryColon}, DeckCount: 1, Description: "Exception handler"},

	// Functions (uncommon, 2 points).
	{Name: "range", Category: CategoryFunction, Points: 2, CanFollow: afterOperand, DeckCount: 4, Description: "Generate number sequence"},
	{Name: "print", Category: CategoryFunction, Points: 2, CanFollow: afterStmtStart, DeckCount: 3, Description: "Output to console"},
	{Name: "len", Category: CategoryFunction, Points: 2, CanFollow: afterOperand, DeckCount: 3, Description: "Get length of sequence"},
	{Name: "input", Category: CategoryFunction, Points: 2, CanFollow: afterOperand, DeckCount: 2, Description: "Get user input"},
	{Name: "int", Category: CategoryFunction, Points: 2, CanFollow: afterOperand, DeckCount: 2, Description: "Convert to integer"},
	{Name: "str", Category: CategoryFunction, Points: 2, CanFollow: afterOperand, DeckCount: 2, Description: "Convert to string"},
	{Name: "list", Category: CategoryFunction, Points: 2, CanFollow: afterOperand, DeckCount: 2, Description: "Create a list"},
	{Name: "sum", Category: CategoryFunction, Points: 2, CanFollow: afterOperand, DeckCount: 2, Description: "Sum of sequence"},

	// Values (common, 1 point).
	{Name: "0", Category: CategoryValue, Points: 1, CanFollow: []Category{CategoryOpenParen, CategoryOperator, CategoryKeyword}, DeckCount: 3, Description: "Number zero"},
	{Name: "1", Category: CategoryValue, Points: 1, CanFollow: []Category{CategoryOpenParen, CategoryOperator, CategoryKeyword}, DeckCount: 4, Description: "Number one"},
	{Name: "10", Category: CategoryValue, Points: 1, CanFollow: []Category{CategoryOpenParen, CategoryOperator, CategoryKeyword}, DeckCount: 3, Description: "Number ten"},
	{Name: "100", Category: CategoryValue, Points: 1, CanFollow: []Category{CategoryOpenParen, CategoryOperator, CategoryKeyword}, DeckCount: 2, Description: "Number hundred"},
	{Name: "True", Category: CategoryValue, Points: 1, CanFollow: afterOperand, DeckCount: 3, Description: "Boolean true"},
	{Name: "False", Category: CategoryValue, Points: 1, CanFollow: afterOperand, DeckCount: 3, Description: "Boolean false"},
	{Name: "None", Category: CategoryValue, Points: 1, CanFollow: afterOperand, DeckCount: 2, Description: "None value"},
	{Name: `"hello"`, Category: CategoryValue, Points: 1, CanFollow: []Category{CategoryOpenParen, CategoryOperator, CategoryKeyword}, DeckCount: 2, Description: "String literal"},
	{Name: "[]", Category: CategoryValue, Points: 1, CanFollow: afterOperand, DeckCount: 2, Description: "Empty list"},

	// Operators (common, 1 point).
	{Name: "+", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 3, Description: "Addition"},
	{Name: "-", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 3, Description: "Subtraction"},
	{Name: "*", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Multiplication"},
	{Name: "/", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Division"},
	{Name: "%", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Modulo"},
	{Name: "==", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 3, Description: "Equality check"},
	{Name: "!=", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Not equal check"},
	{Name: "<", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 3, Description: "Less than"},
	{Name: ">", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 3, Description: "Greater than"},
	{Name: "<=", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Less than or equal"},
	{Name: ">=", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Greater than or equal"},
	{Name: "and", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Logical and"},
	{Name: "or", Category: CategoryOperator, Points: 1, CanFollow: afterExpr, DeckCount: 2, Description: "Logical or"},
	{Name: "=", Category: CategoryOperator, Points: 1, CanFollow: []Category{CategoryVariable}, DeckCount: 4, Description: "Assignment"},
	{Name: "+=", Category: CategoryOperator, Points: 1, CanFollow: []Category{CategoryVariable}, DeckCount: 2, Description: "Add and assign"},

	// Syntax (common, 1 point).
	{Name: "(", Category: CategoryOpenParen, Points: 1, CanFollow: []Category{CategoryFunction, CategoryKeyword}, DeckCount: 6, Description: "Open parenthesis"},
	{Name: ")", Category: CategoryCloseParen, Points: 1, CanFollow: afterExpr, DeckCount: 6, Description: "Close parenthesis"},
	{Name: ":", Category: CategoryColon, Points: 1, CanFollow: []Category{CategoryCloseParen, CategoryValue, CategoryVariable, CategoryKeyword}, DeckCount: 5, Description: "Colon - ends statement"},

	// Specials (0 points, context-free).
	{Name: "Draw 2", Category: CategorySpecial, CanFollow: anywhere, DeckCount: 3, Effect: EffectDrawTwo, Description: "Force opponent to draw 2 cards"},
	{Name: "Discard 2", Category: CategorySpecial, CanFollow: anywhere, DeckCount: 2, Effect: EffectDiscardTwo, Description: "Force opponent to discard 2 random cards"},
	{Name: "Skip", Category: CategorySpecial, CanFollow: anywhere, DeckCount: 3, Effect: EffectSkip, Description: "Skip opponent's turn"},
	{Name: "Wild", Category: CategorySpecial, CanFollow: anywhere, DeckCount: 2, Effect: EffectWild, Description: "Can be played as any category"},
}

var byName = func() map[string]*Card {
	m := make(map[string]*Card, len(cards))
	for i := range cards {
		m[cards[i].Name] = &cards[i]
	}
	return m
}()

// Lookup returns the catalog entry for a card name.
func Lookup(name string) (Card, bool) {
	c, ok := byName[name]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// CategoryOf returns a card's category, or CategoryStart for an
// unknown name (mirrors the sentinel behavior of sequence boundaries).
func CategoryOf(name string) Category {
	if c, ok := byName[name]; ok {
		return c.Category
	}
	return CategoryStart
}

// PointsOf returns a card's point value, zero for unknown names.
func PointsOf(name string) int {
	if c, ok := byName[name]; ok {
		return c.Points
	}
	return 0
}

// EffectOf returns a card's special effect, EffectNone when it has none.
func EffectOf(name string) Effect {
	if c, ok := byName[name]; ok {
		return c.Effect
	}
	return EffectNone
}

// IsSpecial reports whether the named card is a special action card.
func IsSpecial(name string) bool {
	c, ok := byName[name]
	return ok && c.IsSpecial()
}

// Names returns all card names in canonical catalog order.
func Names() []string {
	out := make([]string, len(cards))
	for i := range cards {
		out[i] = cards[i].Name
	}
	return out
}

// BuildDeck materializes a fresh, unshuffled deck: each card name
// repeated DeckCount times, in canonical catalog order.
func BuildDeck() []string {
	deck := make([]string, 0, TotalCount())
	for i := range cards {
		for n := 0; n < cards[i].DeckCount; n++ {
			deck = append(deck, cards[i].Name)
		}
	}
	return deck
}

// TotalCount is the number of cards in a fresh deck.
func TotalCount() int {
	total := 0
	for i := range cards {
		total += cards[i].DeckCount
	}
	return total
}

// CategoriesFollowing returns every category that has at least one
// card allowed to follow prev. Used for rejection hints.
func CategoriesFollowing(prev Category) []Category {
	seen := make(map[Category]bool)
	var out []Category
	for i := range cards {
		if cards[i].Category == CategorySpecial {
			continue
		}
		if cards[i].Follows(prev) && !seen[cards[i].Category] {
			seen[cards[i].Category] = true
			out = append(out, cards[i].Category)
		}
	}
	return out
}
