package gamesession

import (
	"fmt"
	"strings"
)

// SubstitutePlayer hands PlayerOffID's roster slot to PlayerOn. The owner of PlayerOffID keeps
// ownership of its past and future events. PlayerOn is added to the pool when missing.
func (s *Session) SubstitutePlayer(in SubstitutionInput) (Outcome, error) {
	in.PlayerOffID = strings.TrimSpace(in.PlayerOffID)
	in.PlayerOn.ID = strings.TrimSpace(in.PlayerOn.ID)
	if in.PlayerOffID == "" || in.PlayerOn.ID == "" {
		return Outcome{}, fmt.Errorf("%w: both players are required", ErrInvalidArgument)
	}
	if in.PlayerOffID == in.PlayerOn.ID {
		return Outcome{}, fmt.Errorf("%w: a player cannot replace itself", ErrInvalidArgument)
	}
	if in.Minute < 0 {
		return Outcome{}, fmt.Errorf("%w: minute must not be negative", ErrInvalidArgument)
	}
	in.TeamID = strings.TrimSpace(in.TeamID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPlay(); err != nil {
		return Outcome{}, err
	}

	if in.TeamID != "" && s.teamIndex(in.TeamID) < 0 {
		return Outcome{}, fmt.Errorf("%w: unknown team %q", ErrInvalidArgument, in.TeamID)
	}

	ownerIdx, slot, ok := activeSlot(s.participants, in.PlayerOffID)
	if !ok {
		return noop(ReasonPlayerNotActive), nil
	}
	if isRostered(s.participants, in.PlayerOn.ID) {
		return noop(ReasonPlayerUnavailable), nil
	}

	created := false
	if s.playerIndex(in.PlayerOn.ID) < 0 {
		incoming := in.PlayerOn
		if strings.TrimSpace(incoming.Name) == "" {
			incoming.Name = incoming.ID
		}
		if err := incoming.Validate(); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		incoming.Stats = s.ledger.Stats()[incoming.ID]
		s.players = append(s.players, incoming)
		created = true
	}

	subID, err := s.ids.NewID()
	if err != nil {
		if created {
			s.players = s.players[:len(s.players)-1]
		}
		return Outcome{}, fmt.Errorf("generate substitution id: %w", err)
	}

	teamID := in.TeamID
	if teamID == "" {
		teamID = s.players[s.playerIndex(in.PlayerOffID)].TeamID
	}

	owner := &s.participants[ownerIdx]
	owner.ActivePlayers[slot] = in.PlayerOn.ID
	owner.SubstitutedPlayers = append(owner.SubstitutedPlayers, in.PlayerOffID)

	sub := Substitution{
		ID:              subID,
		Seq:             s.ledger.NextSeq(),
		TeamID:          teamID,
		PlayerOffID:     in.PlayerOffID,
		PlayerOnID:      in.PlayerOn.ID,
		OwnerID:         owner.ID,
		Minute:          in.Minute,
		OccurredAt:      s.now().UTC(),
		SlotIndex:       slot,
		CreatedPlayerOn: created,
	}
	s.ledger.Append(Entry{Kind: EntrySubstitution, Substitution: &sub})
	s.activate()
	s.touch()

	if err := CheckInvariants(s.participants); err != nil {
		return Outcome{}, err
	}
	return Outcome{Applied: true, Seq: sub.Seq, OwnerID: sub.OwnerID}, nil
}
