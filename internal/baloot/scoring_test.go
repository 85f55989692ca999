package baloot

import "testing"

func TestCalculateRound_SunNormalSplit(t *testing.T) {
	result := CalculateRound(90, 40, nil, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{})
	if result.Kaboot {
		t.Fatal("an even split should not be a Kaboot")
	}
	if result.Khasara {
		t.Fatal("the bidding team making more Abnat should not be Khasara")
	}
	if result.UsGP <= result.ThemGP {
		t.Errorf("UsGP (%d) should exceed ThemGP (%d) when Us scored more raw points", result.UsGP, result.ThemGP)
	}
}

func TestCalculateRound_KabootWhenOpponentScoresZero(t *testing.T) {
	result := CalculateRound(130, 0, nil, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{})
	if !result.Kaboot {
		t.Fatal("expected Kaboot when the opposing team scores zero raw Abnat")
	}
	if result.UsGP != 44 {
		t.Errorf("Sun Kaboot should award 44 GP, got %d", result.UsGP)
	}
	if result.ThemGP != 0 {
		t.Errorf("the shut-out team should score 0 GP, got %d", result.ThemGP)
	}
}

func TestCalculateRound_HokumKabootAwards25(t *testing.T) {
	result := CalculateRound(0, 100, nil, nil, ModeHokum, DoublingNone, TeamThem, BalootFlags{})
	if !result.Kaboot {
		t.Fatal("expected Kaboot")
	}
	if result.ThemGP != 25 {
		t.Errorf("Hokum Kaboot should award 25 GP, got %d", result.ThemGP)
	}
}

func TestCalculateRound_KhasaraWhenBidderUnderperforms(t *testing.T) {
	// Us bought the bid but Them out-scored Us: Khasara, all Abnat -> Them.
	result := CalculateRound(30, 100, nil, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{})
	if !result.Khasara {
		t.Fatal("expected Khasara when the bidding team scores fewer raw Abnat")
	}
	if result.KhasaraTeam != TeamUs {
		t.Errorf("KhasaraTeam = %v, want TeamUs", result.KhasaraTeam)
	}
	if result.UsGP != 0 {
		t.Errorf("a Khasara bidding team should score 0 GP, got %d", result.UsGP)
	}
	if result.ThemGP == 0 {
		t.Error("the non-bidding team should absorb the combined GP on a Khasara")
	}
}

func TestCalculateRound_DoublingMultipliesTheWinningSide(t *testing.T) {
	base := CalculateRound(90, 40, nil, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{})
	doubled := CalculateRound(90, 40, nil, nil, ModeSun, DoublingDobl, TeamUs, BalootFlags{})
	if doubled.UsGP <= base.UsGP {
		t.Errorf("doubling should increase the winning side's GP: base=%d doubled=%d", base.UsGP, doubled.UsGP)
	}
	if doubled.ThemGP != 0 {
		t.Errorf("doubling collapses the losing side's GP to 0, got %d", doubled.ThemGP)
	}
}

func TestCalculateRound_BalootBonusAddsTwo(t *testing.T) {
	withoutBaloot := CalculateRound(90, 40, nil, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{})
	withBaloot := CalculateRound(90, 40, nil, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{Us: true})
	if withBaloot.UsGP != withoutBaloot.UsGP+2 {
		t.Errorf("Baloot bonus should add exactly 2 GP, got delta %d", withBaloot.UsGP-withoutBaloot.UsGP)
	}
	if !withBaloot.BalootApplied.Us {
		t.Error("BalootApplied.Us should be set when the Us Baloot flag is passed")
	}
}

func TestCalculateRound_ProjectsAddToRawTotal(t *testing.T) {
	noProjects := CalculateRound(50, 50, nil, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{})
	withProject := CalculateRound(50, 50, []Project{{Kind: ProjectFifty}}, nil, ModeSun, DoublingNone, TeamUs, BalootFlags{})
	if withProject.UsGP < noProjects.UsGP {
		t.Error("a Fifty project should only ever help the declaring team's total")
	}
}

// TestCalculateRound_EndToEndScenarios pins down the literal round-end
// scenarios used to validate the Abnat -> Game-Point pipeline end to end:
// Kaboot, boundary Hokum, Khasara, and a doubled Hokum round carrying a
// Baloot bonus.
func TestCalculateRound_EndToEndScenarios(t *testing.T) {
	cases := []struct {
		name               string
		usRaw, themRaw     int
		mode               Mode
		doubling           DoublingLevel
		bidderTeam         Team
		baloot             BalootFlags
		wantUsGP, wantThemGP int
		wantKaboot         bool
		wantKhasara        bool
		wantKhasaraTeam    Team
	}{
		{
			name: "sun round normal split", usRaw: 67, themRaw: 63,
			mode: ModeSun, doubling: DoublingNone, bidderTeam: TeamUs,
			wantUsGP: 14, wantThemGP: 12,
		},
		{
			name: "hokum round exact boundary", usRaw: 81, themRaw: 81,
			mode: ModeHokum, doubling: DoublingNone, bidderTeam: TeamUs,
			wantUsGP: 8, wantThemGP: 8,
		},
		{
			name: "hokum kaboot", usRaw: 162, themRaw: 0,
			mode: ModeHokum, doubling: DoublingNone, bidderTeam: TeamUs,
			wantUsGP: 25, wantThemGP: 0, wantKaboot: true,
		},
		{
			name: "sun khasara on underperforming bidder", usRaw: 60, themRaw: 70,
			mode: ModeSun, doubling: DoublingNone, bidderTeam: TeamUs,
			wantUsGP: 0, wantThemGP: 26, wantKhasara: true, wantKhasaraTeam: TeamUs,
		},
		{
			name: "doubled hokum round with baloot", usRaw: 100, themRaw: 62,
			mode: ModeHokum, doubling: DoublingDobl, bidderTeam: TeamUs,
			baloot:   BalootFlags{Us: true},
			wantUsGP: 34, wantThemGP: 0,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result := CalculateRound(c.usRaw, c.themRaw, nil, nil, c.mode, c.doubling, c.bidderTeam, c.baloot)
			if result.UsGP != c.wantUsGP || result.ThemGP != c.wantThemGP {
				t.Errorf("GP = (%d, %d), want (%d, %d)", result.UsGP, result.ThemGP, c.wantUsGP, c.wantThemGP)
			}
			if result.Kaboot != c.wantKaboot {
				t.Errorf("Kaboot = %v, want %v", result.Kaboot, c.wantKaboot)
			}
			if result.Khasara != c.wantKhasara {
				t.Errorf("Khasara = %v, want %v", result.Khasara, c.wantKhasara)
			}
			if c.wantKhasara && result.KhasaraTeam != c.wantKhasaraTeam {
				t.Errorf("KhasaraTeam = %v, want %v", result.KhasaraTeam, c.wantKhasaraTeam)
			}
			if c.baloot.Us && !result.BalootApplied.Us {
				t.Error("expected BalootApplied.Us to be set")
			}
		})
	}
}

func TestCardPoints_SunModeIgnoresTrump(t *testing.T) {
	ace := NewCard(Spades, Ace)
	if got := CardPoints(ace, ModeSun, Hearts); got != 11 {
		t.Errorf("Sun-mode Ace should be worth 11 regardless of trump, got %d", got)
	}
}

func TestCardPoints_HokumPromotesTrumpJackAndNine(t *testing.T) {
	jack := NewCard(Hearts, Jack)
	if got := CardPoints(jack, ModeHokum, Hearts); got != 20 {
		t.Errorf("Hokum trump Jack should be worth 20, got %d", got)
	}
	if got := CardPoints(jack, ModeHokum, Spades); got != 2 {
		t.Errorf("non-trump Jack should be worth 2, got %d", got)
	}
	nine := NewCard(Hearts, Nine)
	if got := CardPoints(nine, ModeHokum, Hearts); got != 14 {
		t.Errorf("Hokum trump Nine should be worth 14, got %d", got)
	}
}
