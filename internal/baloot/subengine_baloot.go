package baloot

// BalootState tracks the two-phase King+Queen-of-trump declaration for one
// seat within a round.
type BalootState struct {
	Owner      int
	Phase1     bool // King played and announced
	Completed  bool // Queen played and announced (Re-baloot)
	Suppressed bool // absorbed into a Hundred project on the same cards
}

// DeclareKing records phase 1: owner plays the trump King and announces
// "Baloot". No GP is awarded yet.
func DeclareKing(owner int) *BalootState {
	return &BalootState{Owner: owner, Phase1: true}
}

// ErrBalootWrongOwner is returned if a seat other than the phase-1 owner
// attempts to complete the declaration.
var ErrBalootWrongOwner = &balootError{"baloot: re-baloot must be declared by the same seat that declared baloot"}

// DeclareQueen completes phase 2: owner plays the trump Queen and
// announces "Re-baloot". Returns false without mutation if phase 1 was
// never completed, owner mismatches, or the declaration was suppressed by
// an absorbing Hundred project.
func (b *BalootState) DeclareQueen(owner int, suppressedByProject bool) (bool, error) {
	if !b.Phase1 {
		return false, nil
	}
	if owner != b.Owner {
		return false, ErrBalootWrongOwner
	}
	if suppressedByProject {
		b.Suppressed = true
		return false, nil
	}
	b.Completed = true
	return true, nil
}

// AwardsBonus reports whether this declaration contributes the flat
// BalootBonusGP, applied post-doubling and immune to the doubling
// multiplier.
func (b *BalootState) AwardsBonus() bool {
	return b.Completed && !b.Suppressed
}

// AbsorbedByHundredProject reports whether a detected Hundred project on
// the same player's hand contains both the trump King and Queen, which
// absorbs (suppresses) a Baloot declaration on those same two cards.
func AbsorbedByHundredProject(projects []Project, trumpSuit Suit) bool {
	for _, p := range projects {
		if p.Kind != ProjectHundred {
			continue
		}
		hasKing, hasQueen := false, false
		for _, c := range p.Cards {
			if c.Suit != trumpSuit {
				continue
			}
			if c.Rank == King {
				hasKing = true
			}
			if c.Rank == Queen {
				hasQueen = true
			}
		}
		if hasKing && hasQueen {
			return true
		}
	}
	return false
}
