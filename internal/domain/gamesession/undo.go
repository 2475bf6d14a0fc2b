package gamesession

import (
	"slices"

	crerr "github.com/cockroachdb/errors"
)

// UndoLastEvent reverses the most recent ledger entry from its stored data. An empty ledger is a
// no-op. An undone live event stays known so the feed cannot deliver it again. Undoing the entry
// that implicitly started play returns the session to its setup phase.
func (s *Session) UndoLastEvent() (UndoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPlay(); err != nil {
		return UndoResult{}, err
	}

	last, ok := s.ledger.Last()
	if !ok {
		return UndoResult{}, nil
	}

	switch last.Kind {
	case EntryEvent:
		ev := last.Event
		s.applyTransfers(ev.Transfers, true)
		s.bumpStats(ev.PlayerID, ev.Type, -1)
	case EntrySubstitution:
		if err := s.revertSubstitution(*last.Substitution); err != nil {
			return UndoResult{}, err
		}
	default:
		return UndoResult{}, crerr.AssertionFailedf("ledger entry %d has unknown kind %q", last.Seq(), last.Kind)
	}

	s.ledger.Pop()
	if last.Kind == EntryEvent && last.Event.Source == SourceLive && last.Event.DedupKey != "" {
		if s.undoneLive == nil {
			s.undoneLive = make(map[string]struct{})
		}
		s.undoneLive[last.Event.DedupKey] = struct{}{}
	}
	if s.ledger.Len() == 0 && s.startedFrom != "" {
		s.phase = s.startedFrom
		s.startedFrom = ""
	}
	s.touch()
	if err := CheckInvariants(s.participants); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Undone: true, Kind: last.Kind, Seq: last.Seq()}, nil
}

func (s *Session) revertSubstitution(sub Substitution) error {
	idx := s.participantIndex(sub.OwnerID)
	if idx < 0 {
		return crerr.AssertionFailedf("substitution %d references missing participant %s", sub.Seq, sub.OwnerID)
	}
	owner := &s.participants[idx]

	slot := sub.SlotIndex
	if slot < 0 || slot >= len(owner.ActivePlayers) || owner.ActivePlayers[slot] != sub.PlayerOnID {
		slot = slices.Index(owner.ActivePlayers, sub.PlayerOnID)
	}
	if slot < 0 {
		return crerr.AssertionFailedf("substitution %d: player %s is not active for %s", sub.Seq, sub.PlayerOnID, sub.OwnerID)
	}
	owner.ActivePlayers[slot] = sub.PlayerOffID

	if i := lastIndex(owner.SubstitutedPlayers, sub.PlayerOffID); i >= 0 {
		owner.SubstitutedPlayers = slices.Delete(owner.SubstitutedPlayers, i, i+1)
	}

	if sub.CreatedPlayerOn {
		if i := s.playerIndex(sub.PlayerOnID); i >= 0 {
			s.players = slices.Delete(s.players, i, i+1)
		}
		s.selected = slices.DeleteFunc(s.selected, func(v string) bool { return v == sub.PlayerOnID })
	}
	return nil
}

func lastIndex(values []string, target string) int {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] == target {
			return i
		}
	}
	return -1
}
