package gamesession

import "slices"

// OwnerOf returns the participant entitled to settlement for playerID. Active rosters are searched
// first, then the substituted lists, so a player keeps settling to whoever owned them when they
// were subbed off.
func OwnerOf(participants []Participant, playerID string) (string, bool) {
	if playerID == "" {
		return "", false
	}
	for _, p := range participants {
		if slices.Contains(p.ActivePlayers, playerID) {
			return p.ID, true
		}
	}
	for _, p := range participants {
		if slices.Contains(p.SubstitutedPlayers, playerID) {
			return p.ID, true
		}
	}
	return "", false
}

// activeSlot locates playerID in an active roster.
func activeSlot(participants []Participant, playerID string) (participantIdx, slot int, ok bool) {
	for i, p := range participants {
		if j := slices.Index(p.ActivePlayers, playerID); j >= 0 {
			return i, j, true
		}
	}
	return -1, -1, false
}

func isRostered(participants []Participant, playerID string) bool {
	_, ok := OwnerOf(participants, playerID)
	return ok
}
