package gamesession

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

const shuffleStream = 0x9e3779b97f4a7c15

// AssignPlayersRandomly deals the selected players (or the whole pool when nothing is selected)
// across participants. The order is a seeded shuffle of the pool order, dealt round-robin, so
// roster sizes differ by at most one and the same seed always yields the same assignment.
// Existing assignments are replaced.
func (s *Session) AssignPlayersRandomly(seed uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}
	if len(s.participants) == 0 {
		return ErrNoParticipants
	}

	candidates := append([]string(nil), s.selected...)
	if len(candidates) == 0 {
		for _, p := range s.players {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return ErrNoPlayers
	}

	rng := rand.New(rand.NewPCG(seed, seed^shuffleStream))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for i := range s.participants {
		s.participants[i].ActivePlayers = nil
		s.participants[i].SubstitutedPlayers = nil
	}
	for i, playerID := range candidates {
		idx := i % len(s.participants)
		s.participants[idx].ActivePlayers = append(s.participants[idx].ActivePlayers, playerID)
	}

	s.phase = PhaseAssigning
	s.touch()
	return CheckInvariants(s.participants)
}

// AssignPlayer gives playerID to participantID, taking it away from any previous owner.
func (s *Session) AssignPlayer(playerID, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}
	if s.playerIndex(playerID) < 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	target := s.participantIndex(participantID)
	if target < 0 {
		return fmt.Errorf("%w: %s", ErrParticipantNotFound, participantID)
	}

	for i := range s.participants {
		s.participants[i].ActivePlayers = slices.DeleteFunc(s.participants[i].ActivePlayers, func(v string) bool {
			return v == playerID
		})
	}
	s.participants[target].ActivePlayers = append(s.participants[target].ActivePlayers, playerID)

	s.phase = PhaseAssigning
	s.touch()
	return CheckInvariants(s.participants)
}

// UnassignPlayer removes playerID from every roster.
func (s *Session) UnassignPlayer(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}
	if !isRostered(s.participants, playerID) {
		return fmt.Errorf("%w: %s is not assigned", ErrPlayerNotFound, playerID)
	}

	for i := range s.participants {
		s.participants[i].ActivePlayers = slices.DeleteFunc(s.participants[i].ActivePlayers, func(v string) bool {
			return v == playerID
		})
	}
	s.touch()
	return nil
}
