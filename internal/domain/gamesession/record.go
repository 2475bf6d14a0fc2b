package gamesession

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
)

// RecordEvent applies a manually entered standard event. Manual events are never deduplicated.
func (s *Session) RecordEvent(playerID string, t bet.EventType, minute int) (Outcome, error) {
	if t == bet.EventCustom {
		return Outcome{}, fmt.Errorf("%w: custom events are recorded with RecordCustomEvent", ErrInvalidArgument)
	}
	if _, ok := bet.AllEventTypes[t]; !ok {
		return Outcome{}, fmt.Errorf("%w: %q", bet.ErrUnknownEventType, t)
	}
	if minute < 0 {
		return Outcome{}, fmt.Errorf("%w: minute must not be negative", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPlay(); err != nil {
		return Outcome{}, err
	}
	if s.playerIndex(playerID) < 0 {
		return noop(ReasonUnknownPlayer), nil
	}

	return s.apply(GameEvent{
		PlayerID: playerID,
		Type:     t,
		Minute:   minute,
		Source:   SourceManual,
	})
}

// RecordCustomEvent applies the custom bet named name. An unknown name is a no-op.
func (s *Session) RecordCustomEvent(playerID, name string, minute int) (Outcome, error) {
	name = strings.TrimSpace(name)
	if minute < 0 {
		return Outcome{}, fmt.Errorf("%w: minute must not be negative", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPlay(); err != nil {
		return Outcome{}, err
	}
	if _, ok := s.book.LookupCustom(name); !ok {
		return noop(ReasonUnknownCustomBet), nil
	}
	if s.playerIndex(playerID) < 0 {
		return noop(ReasonUnknownPlayer), nil
	}

	return s.apply(GameEvent{
		PlayerID:   playerID,
		Type:       bet.EventCustom,
		CustomName: name,
		Minute:     minute,
		Source:     SourceManual,
	})
}

// RecordLiveEvent applies an event delivered by the match feed. An event already present in the
// ledger, by feed id or else by (player, type, minute), is a no-op.
func (s *Session) RecordLiveEvent(ev LiveEvent) (Outcome, error) {
	if ev.Type == bet.EventCustom {
		return Outcome{}, fmt.Errorf("%w: the feed does not emit custom events", ErrInvalidArgument)
	}
	if _, ok := bet.AllEventTypes[ev.Type]; !ok {
		return Outcome{}, fmt.Errorf("%w: %q", bet.ErrUnknownEventType, ev.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPlay(); err != nil {
		return Outcome{}, err
	}

	playerID := ev.PlayerID
	if playerID == "" {
		p, ok := s.playerByExternalID(ev.ExternalPlayerID)
		if !ok {
			return noop(ReasonUnknownPlayer), nil
		}
		playerID = p.ID
	}
	if s.playerIndex(playerID) < 0 {
		return noop(ReasonUnknownPlayer), nil
	}

	key := ev.dedupKey(playerID)
	if _, undone := s.undoneLive[key]; undone || s.ledger.Contains(key) {
		return noop(ReasonDuplicate), nil
	}

	return s.apply(GameEvent{
		PlayerID:   playerID,
		Type:       ev.Type,
		Minute:     ev.Minute,
		Source:     SourceLive,
		ExternalID: ev.ExternalID,
		DedupKey:   key,
	})
}

// apply settles and appends ev. The caller holds the lock.
func (s *Session) apply(ev GameEvent) (Outcome, error) {
	owner, _ := OwnerOf(s.participants, ev.PlayerID)
	settlement, err := Settle(SettlementInput{
		Type:         ev.Type,
		CustomName:   ev.CustomName,
		OwnerID:      owner,
		Participants: s.participantIDs(),
		Book:         s.book,
		Policy:       s.policy,
	})
	if err != nil {
		return Outcome{}, err
	}

	eventID, err := s.ids.NewID()
	if err != nil {
		return Outcome{}, fmt.Errorf("generate event id: %w", err)
	}

	ev.ID = eventID
	ev.Seq = s.ledger.NextSeq()
	ev.OccurredAt = s.now().UTC()
	ev.OwnerID = owner
	ev.Transfers = settlement.Transfers

	s.applyTransfers(ev.Transfers, false)
	s.bumpStats(ev.PlayerID, ev.Type, 1)
	s.ledger.Append(Entry{Kind: EntryEvent, Event: &ev})
	s.activate()
	s.touch()

	if err := CheckInvariants(s.participants); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Applied:   true,
		Seq:       ev.Seq,
		OwnerID:   owner,
		Transfers: cloneTransfers(ev.Transfers),
	}
	switch {
	case !settlement.Matched:
		out.Reason = ReasonNoBet
	case owner == "":
		out.Reason = ReasonNoOwner
	}
	return out, nil
}
