package postgres

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/valyala/bytebufferpool"
)

const documentVersion = 1

// sessionDocument is the JSONB payload of a game_sessions row.
type sessionDocument struct {
	Version int                  `json:"version"`
	Session gamesession.Snapshot `json:"session"`
}

func encodeSessionDocument(snap gamesession.Snapshot) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigStd.NewEncoder(buf)
	if err := enc.Encode(sessionDocument{Version: documentVersion, Session: snap}); err != nil {
		return "", fmt.Errorf("encode session document: %w", err)
	}
	return buf.String(), nil
}

func decodeSessionDocument(raw string, version int) (gamesession.Snapshot, error) {
	if version != documentVersion {
		return gamesession.Snapshot{}, fmt.Errorf("%w: unsupported document version %d", gamesession.ErrCorruptSnapshot, version)
	}

	var doc sessionDocument
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		return gamesession.Snapshot{}, fmt.Errorf("%w: decode session document: %v", gamesession.ErrCorruptSnapshot, err)
	}
	if doc.Version != documentVersion {
		return gamesession.Snapshot{}, fmt.Errorf("%w: document version mismatch %d", gamesession.ErrCorruptSnapshot, doc.Version)
	}
	return doc.Session, nil
}
