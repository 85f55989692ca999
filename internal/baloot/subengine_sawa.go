package baloot

// SawaState tracks an in-progress "equal" claim and the other three seats'
// responses. The response window's wall-clock timing and epoch validation
// live in the botsched package; this type only models the pure
// accept/reject bookkeeping.
type SawaState struct {
	Active    bool
	ClaimSeat int
	Responses map[int]bool // seat -> accepted
	Epoch     int
}

// NewSawaClaim opens a claim by claimSeat, awaiting responses from the
// other three seats.
func NewSawaClaim(claimSeat int, epoch int) *SawaState {
	return &SawaState{Active: true, ClaimSeat: claimSeat, Responses: map[int]bool{}, Epoch: epoch}
}

// ErrSawaNotActive is returned when responding to a claim that isn't open.
var ErrSawaNotActive = &balootError{"baloot: no active sawa claim"}

// Respond records seat's accept/reject. Returns (resolved, unanimousAccept):
// resolved is true once all three non-claiming seats have responded.
func (s *SawaState) Respond(seat int, accept bool) (resolved bool, unanimousAccept bool, err error) {
	if !s.Active {
		return false, false, ErrSawaNotActive
	}
	if seat == s.ClaimSeat {
		return false, false, ErrSawaNotActive
	}
	s.Responses[seat] = accept

	if len(s.Responses) < 3 {
		return false, false, nil
	}

	unanimous := true
	for _, v := range s.Responses {
		if !v {
			unanimous = false
			break
		}
	}
	s.Active = false
	return true, unanimous, nil
}

// Abort cancels the claim without effect, used when the timer's epoch has
// gone stale (round ended by normal play, disconnect, or reset).
func (s *SawaState) Abort() {
	s.Active = false
}
