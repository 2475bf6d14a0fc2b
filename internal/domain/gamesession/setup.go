package gamesession

import (
	"fmt"
	"slices"
	"strings"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/riskibarqy/matchbet/internal/domain/team"
	"github.com/shopspring/decimal"
)

func (s *Session) AddTeam(t team.Team) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}
	for _, existing := range s.teams {
		if existing.ID == t.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateTeam, t.ID)
		}
	}

	s.teams = append(s.teams, t)
	s.touch()
	return nil
}

// AddBet registers the stake for a standard event type.
func (s *Session) AddBet(t bet.EventType, amount decimal.Decimal) error {
	if t == bet.EventCustom {
		return fmt.Errorf("%w: custom bets are added with AddCustomEvent", ErrInvalidArgument)
	}
	return s.addBet(bet.Bet{Type: t, Amount: amount})
}

// AddCustomEvent registers a named custom bet.
func (s *Session) AddCustomEvent(name string, amount decimal.Decimal) error {
	return s.addBet(bet.Bet{Type: bet.EventCustom, Name: name, Amount: amount})
}

func (s *Session) addBet(b bet.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}
	if err := s.book.Add(b); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *Session) RemoveBet(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}
	if err := s.book.Remove(key); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *Session) AddParticipant(name string) (Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Participant{}, fmt.Errorf("%w: participant name is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return Participant{}, err
	}
	for _, p := range s.participants {
		if strings.EqualFold(p.Name, name) {
			return Participant{}, fmt.Errorf("%w: %s", ErrDuplicateParticipant, name)
		}
	}

	participantID, err := s.ids.NewID()
	if err != nil {
		return Participant{}, fmt.Errorf("generate participant id: %w", err)
	}

	p := Participant{ID: participantID, Name: name, Balance: decimal.Zero}
	s.participants = append(s.participants, p)
	s.touch()
	return p.clone(), nil
}

// AddPlayers appends players to the candidate pool. The call is atomic: either every player is
// added or none is.
func (s *Session) AddPlayers(players ...player.Player) error {
	if len(players) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(s.players)+len(players))
	for _, p := range s.players {
		seen[p.ID] = struct{}{}
	}
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	for _, p := range players {
		p.Stats = player.Stats{}
		s.players = append(s.players, p)
	}
	s.touch()
	return nil
}

// SelectPlayers narrows the pool used by AssignPlayersRandomly. An empty list clears the selection.
func (s *Session) SelectPlayers(playerIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardSetup(); err != nil {
		return err
	}

	selected := make([]string, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		if s.playerIndex(playerID) < 0 {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		if slices.Contains(selected, playerID) {
			continue
		}
		selected = append(selected, playerID)
	}

	s.selected = selected
	s.touch()
	return nil
}
