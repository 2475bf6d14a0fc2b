package usecase

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// mapDomainError classifies engine errors for the transport layer while keeping the original in
// the chain.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gamesession.ErrNotFound),
		errors.Is(err, gamesession.ErrParticipantNotFound),
		errors.Is(err, gamesession.ErrPlayerNotFound),
		errors.Is(err, bet.ErrBetNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gamesession.ErrSessionLocked),
		errors.Is(err, gamesession.ErrSessionFinished),
		errors.Is(err, gamesession.ErrDuplicateParticipant),
		errors.Is(err, gamesession.ErrDuplicatePlayer),
		errors.Is(err, gamesession.ErrDuplicateTeam),
		errors.Is(err, bet.ErrDuplicateBet):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, gamesession.ErrInvalidArgument),
		errors.Is(err, gamesession.ErrNoParticipants),
		errors.Is(err, gamesession.ErrNoPlayers),
		errors.Is(err, bet.ErrInvalidBet),
		errors.Is(err, bet.ErrUnknownEventType):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return err
	}
}

func isAssertionFailure(err error) bool {
	return crerr.HasAssertionFailure(err)
}
