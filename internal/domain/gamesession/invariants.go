package gamesession

import (
	crerr "github.com/cockroachdb/errors"
)

// CheckInvariants verifies roster exclusivity. A violation is a bug in the engine, never a user
// error, and is reported as an assertion failure.
func CheckInvariants(participants []Participant) error {
	activeOwner := make(map[string]string)
	for _, p := range participants {
		active := make(map[string]struct{}, len(p.ActivePlayers))
		for _, playerID := range p.ActivePlayers {
			if _, dup := active[playerID]; dup {
				return crerr.AssertionFailedf("player %s listed twice in active roster of %s", playerID, p.ID)
			}
			active[playerID] = struct{}{}

			if other, taken := activeOwner[playerID]; taken {
				return crerr.AssertionFailedf("player %s is active for both %s and %s", playerID, other, p.ID)
			}
			activeOwner[playerID] = p.ID
		}
		for _, playerID := range p.SubstitutedPlayers {
			if _, clash := active[playerID]; clash {
				return crerr.AssertionFailedf("player %s is both active and substituted for %s", playerID, p.ID)
			}
		}
	}
	return nil
}
