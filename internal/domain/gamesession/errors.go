package gamesession

import "errors"

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrSessionLocked        = errors.New("session setup is locked once play has started")
	ErrSessionFinished      = errors.New("session is finished")
	ErrDuplicateParticipant = errors.New("participant already exists")
	ErrDuplicatePlayer      = errors.New("player already exists")
	ErrDuplicateTeam        = errors.New("team already exists")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrNoParticipants       = errors.New("session has no participants")
	ErrNoPlayers            = errors.New("session has no players to assign")
	ErrCorruptSnapshot      = errors.New("snapshot is inconsistent")
	ErrNotFound             = errors.New("session not found")
)
