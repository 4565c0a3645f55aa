// Package turn computes snake draft turn ownership. Everything here is a
// pure function of the pick counter and the participant count; turn
// ownership is never stored, only derived, so concurrent writers can all
// re-derive the same answer from the session row.
package turn

// Owner maps an absolute 1-based pick number to the 0-based seat index that
// owns it. Odd rounds run in seating order, even rounds reversed.
func Owner(pickNumber, participantCount int) int {
	if pickNumber < 1 || participantCount < 1 {
		return -1
	}
	round := (pickNumber-1)/participantCount + 1
	offset := (pickNumber - 1) % participantCount
	if round%2 == 1 {
		return offset
	}
	return participantCount - 1 - offset
}

// Round returns the 1-based round a pick number falls in.
func Round(pickNumber, participantCount int) int {
	if pickNumber < 1 || participantCount < 1 {
		return 0
	}
	return (pickNumber-1)/participantCount + 1
}

// NextEligible scans forward from lastPick in snake order for the next seat
// whose roster is not yet complete. Seats that finished early are skipped so
// a turn is never offered to a participant with no open slot. ok is false
// when every seat reports complete.
//
// The scan is bounded: a participant with an open slot must appear within
// one full set of rounds, so participantCount*rosterSize picks past lastPick
// is always enough.
func NextEligible(lastPick, participantCount, rosterSize int, completed func(seat int) bool) (pick, seat int, ok bool) {
	if participantCount < 1 || rosterSize < 1 {
		return 0, 0, false
	}
	limit := lastPick + participantCount*rosterSize
	for p := lastPick + 1; p <= limit; p++ {
		s := Owner(p, participantCount)
		if !completed(s) {
			return p, s, true
		}
	}
	return 0, 0, false
}
