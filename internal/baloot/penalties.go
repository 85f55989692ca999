package baloot

// Penalty constants consolidate the Akka/Qayd penalty values in one table
// instead of scattering them across the engines that apply them.
const (
	// AkkaValidGP is awarded to the claimant's team when an Akka claim is
	// verified true.
	AkkaValidGP = 1

	// AkkaInvalidPenaltyGP is forfeited by the claimant's team to the
	// opposing team when an Akka claim is verified false.
	AkkaInvalidPenaltyGP = 1

	// QaydInnocentPenaltyGP is forfeited by the reporting team when a Qayd
	// challenge is ruled Innocent.
	QaydInnocentPenaltyGP = 2

	// BalootBonusGP is the flat, doubling-immune bonus for a completed
	// Baloot/Re-baloot declaration.
	BalootBonusGP = 2
)
