// Package legality decides whether a card may be inserted at a given
// position in the played sequence. The grammar checker is the
// authoritative filter; category adjacency only supplies rejection
// reasons and suggestion hints, so a card that breaks the adjacency
// table but still forms plausible code is legal.
package legality

import (
	"fmt"

	"github.com/nypblockchain/pythongame/internal/catalog"
	"github.com/nypblockchain/pythongame/internal/grammar"
)

// Context carries the session state the engine needs beyond the
// sequence itself.
type Context struct {
	// WildBridgeActive waives the category-adjacency check for the
	// next card after a Wild was played.
	WildBridgeActive bool
	// OpenParenCount is the unbalanced open-paren count of the
	// current played sequence.
	OpenParenCount int
}

// Verdict is the answer to a CanInsert query. Reason and
// SuggestedCategories are populated only on rejection.
type Verdict struct {
	Legal               bool
	Reason              string
	SuggestedCategories []catalog.Category
}

// CanInsert reports whether card can be inserted into sequence at
// position (0..len(sequence); len means append). It is a pure query:
// repeated calls with the same arguments yield the same answer.
func CanInsert(card string, sequence []string, position int, ctx Context) Verdict {
	entry, ok := catalog.Lookup(card)
	if !ok {
		return Verdict{Reason: fmt.Sprintf("unknown card %q", card)}
	}

	// Special cards never enter the played sequence.
	if entry.IsSpecial() {
		return Verdict{Legal: true}
	}

	// Structural guard, independent of the grammar.
	if entry.Category == catalog.CategoryCloseParen && ctx.OpenParenCount <= 0 {
		return Verdict{Reason: "no open parenthesis to close"}
	}

	if position < 0 || position > len(sequence) {
		return Verdict{Reason: "position out of range"}
	}

	prev := predecessorCategory(sequence, position)
	categoryOK := ctx.WildBridgeActive || entry.Follows(prev)

	if grammarAllows(entry, sequence, position) {
		return Verdict{Legal: true}
	}

	v := Verdict{}
	if !categoryOK {
		v.Reason = fmt.Sprintf("a %s card cannot follow a %s card", entry.Category, prev)
		v.SuggestedCategories = catalog.CategoriesFollowing(prev)
	} else {
		v.Reason = fmt.Sprintf("%q would not form valid code here", card)
	}
	return v
}

// predecessorCategory resolves the category of the token immediately
// before position. Position zero sees the START sentinel, and a colon
// resets the boundary to START (a new statement begins).
func predecessorCategory(sequence []string, position int) catalog.Category {
	if position == 0 {
		return catalog.CategoryStart
	}
	prev := sequence[position-1]
	cat := catalog.CategoryOf(prev)
	if cat == catalog.CategoryColon {
		return catalog.CategoryStart
	}
	return cat
}

// grammarAllows applies the authoritative check: the spliced sequence
// is valid as-is, or the prefix ending at the insertion is extendable.
// Mid-sequence insertions additionally require the displaced forward
// neighbor to remain a legal successor of the new card.
func grammarAllows(entry catalog.Card, sequence []string, position int) bool {
	spliced := splice(sequence, position, entry.Name)
	if grammar.IsSyntacticallyValid(spliced) {
		return true
	}

	prefix := sequence[:position]
	if !grammar.CanExtendToValid(prefix, entry.Name) {
		return false
	}
	if position == len(sequence) {
		return true
	}
	next, ok := catalog.Lookup(sequence[position])
	if !ok {
		return false
	}
	return next.Follows(entry.Category)
}

func splice(sequence []string, position int, card string) []string {
	out := make([]string, 0, len(sequence)+1)
	out = append(out, sequence[:position]...)
	out = append(out, card)
	out = append(out, sequence[position:]...)
	return out
}

// PlayableCards filters hand down to the cards that are legal at the
// append position. Duplicates in hand are preserved.
func PlayableCards(hand, sequence []string, ctx Context) []string {
	var out []string
	for _, card := range hand {
		if CanInsert(card, sequence, len(sequence), ctx).Legal {
			out = append(out, card)
		}
	}
	return out
}
