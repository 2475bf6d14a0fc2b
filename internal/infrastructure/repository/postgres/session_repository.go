package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/platform/querybuilder"
)

const sessionTable = "game_sessions"

// SessionRepository stores each session as one row: listing columns plus the full snapshot as
// JSONB. Deletes are soft.
type SessionRepository struct {
	db *sqlx.DB
}

var _ gamesession.Repository = (*SessionRepository)(nil)

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Save(ctx context.Context, snap gamesession.Snapshot) error {
	if strings.TrimSpace(snap.ID) == "" {
		return fmt.Errorf("%w: session id is required", gamesession.ErrInvalidArgument)
	}

	document, err := encodeSessionDocument(snap)
	if err != nil {
		return err
	}

	query, args, err := upsertSessionSQL(newSessionRow(snap, document))
	if err != nil {
		return fmt.Errorf("build upsert game session query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("upsert game session id=%s: %w", snap.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert game session rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: session %s was deleted", gamesession.ErrNotFound, snap.ID)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (gamesession.Snapshot, error) {
	query, args, err := selectSessionSQL(sessionID)
	if err != nil {
		return gamesession.Snapshot{}, fmt.Errorf("build select game session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gamesession.Snapshot{}, fmt.Errorf("%w: session %s", gamesession.ErrNotFound, sessionID)
		}
		return gamesession.Snapshot{}, fmt.Errorf("select game session id=%s: %w", sessionID, err)
	}

	snap, err := decodeSessionDocument(row.Document, row.DocumentVersion)
	if err != nil {
		return gamesession.Snapshot{}, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if snap.ID != row.PublicID {
		return gamesession.Snapshot{}, fmt.Errorf("%w: document id %q does not match row %q", gamesession.ErrCorruptSnapshot, snap.ID, row.PublicID)
	}
	return snap, nil
}

func (r *SessionRepository) List(ctx context.Context) ([]gamesession.Summary, error) {
	query, args, err := listSessionsSQL()
	if err != nil {
		return nil, fmt.Errorf("build list game sessions query: %w", err)
	}

	var rows []sessionSummaryModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("select game sessions: run migrations first: %w", err)
		}
		return nil, fmt.Errorf("select game sessions: %w", err)
	}

	out := make([]gamesession.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	query, args, err := querybuilder.Update(sessionTable).
		SetExpr("deleted_at", "NOW()").
		SetExpr("updated_at", "NOW()").
		Where(querybuilder.Eq("public_id", sessionID), querybuilder.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete game session query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete game session id=%s: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete game session rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: session %s", gamesession.ErrNotFound, sessionID)
	}
	return nil
}

func upsertSessionSQL(row sessionTableModel) (string, []any, error) {
	insert, err := querybuilder.InsertModel(sessionTable, row, "id", "deleted_at")
	if err != nil {
		return "", nil, err
	}
	return insert.
		Cast("document", "JSONB").
		OnConflict("public_id").
		DoUpdateExcluded(
			"name", "phase", "is_live_mode", "match_ref", "participant_count", "entry_count",
			"document_version", "document", "updated_at",
		).
		DoUpdateWhere(sessionTable + ".deleted_at IS NULL").
		ToSQL()
}

func selectSessionSQL(sessionID string) (string, []any, error) {
	cols, err := querybuilder.ColumnsFromModel(sessionTableModel{})
	if err != nil {
		return "", nil, err
	}
	for i, col := range cols {
		if col == "document" {
			cols[i] = "document::TEXT AS document"
		}
	}
	return querybuilder.Select(cols...).
		From(sessionTable).
		Where(querybuilder.Eq("public_id", sessionID), querybuilder.IsNull("deleted_at")).
		ToSQL()
}

func listSessionsSQL() (string, []any, error) {
	cols, err := querybuilder.ColumnsFromModel(sessionSummaryModel{})
	if err != nil {
		return "", nil, err
	}
	return querybuilder.Select(cols...).
		From(sessionTable).
		Where(querybuilder.IsNull("deleted_at")).
		OrderBy("updated_at DESC", "public_id").
		ToSQL()
}
