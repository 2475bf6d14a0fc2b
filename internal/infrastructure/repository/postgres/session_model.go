package postgres

import (
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
)

type sessionTableModel struct {
	ID               int64      `db:"id"`
	PublicID         string     `db:"public_id"`
	Name             string     `db:"name"`
	Phase            string     `db:"phase"`
	IsLiveMode       bool       `db:"is_live_mode"`
	MatchRef         string     `db:"match_ref"`
	ParticipantCount int        `db:"participant_count"`
	EntryCount       int        `db:"entry_count"`
	DocumentVersion  int        `db:"document_version"`
	Document         string     `db:"document"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
}

type sessionSummaryModel struct {
	PublicID         string    `db:"public_id"`
	Name             string    `db:"name"`
	Phase            string    `db:"phase"`
	IsLiveMode       bool      `db:"is_live_mode"`
	MatchRef         string    `db:"match_ref"`
	ParticipantCount int       `db:"participant_count"`
	EntryCount       int       `db:"entry_count"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (m sessionSummaryModel) toDomain() gamesession.Summary {
	return gamesession.Summary{
		ID:           m.PublicID,
		Name:         m.Name,
		Phase:        gamesession.Phase(m.Phase),
		IsLiveMode:   m.IsLiveMode,
		MatchRef:     m.MatchRef,
		Participants: m.ParticipantCount,
		Entries:      m.EntryCount,
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func newSessionRow(snap gamesession.Snapshot, document string) sessionTableModel {
	summary := snap.Summary()
	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return sessionTableModel{
		PublicID:         summary.ID,
		Name:             summary.Name,
		Phase:            string(summary.Phase),
		IsLiveMode:       summary.IsLiveMode,
		MatchRef:         summary.MatchRef,
		ParticipantCount: summary.Participants,
		EntryCount:       summary.Entries,
		DocumentVersion:  documentVersion,
		Document:         document,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}
