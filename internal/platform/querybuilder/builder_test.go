package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("game_sessions").
		Where(Eq("public_id", "s1"), IsNull("deleted_at")).
		OrderBy("updated_at DESC", "public_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM game_sessions WHERE public_id = $1 AND deleted_at IS NULL ORDER BY updated_at DESC, public_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "s1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RequiresTable(t *testing.T) {
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsertBuilder_Upsert(t *testing.T) {
	query, args, err := InsertInto("game_sessions").
		Columns("public_id", "name", "document").
		Values("s1", "Derby", `{"id":"s1"}`).
		Cast("document", "JSONB").
		OnConflict("public_id").
		DoUpdateExcluded("name", "document").
		DoUpdateWhere("game_sessions.deleted_at IS NULL").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO game_sessions (public_id, name, document) VALUES ($1, $2, CAST($3 AS JSONB)) " +
		"ON CONFLICT (public_id) DO UPDATE SET name = EXCLUDED.name, document = EXCLUDED.document " +
		"WHERE game_sessions.deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "s1" || args[1] != "Derby" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_Errors(t *testing.T) {
	if _, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL(); err == nil {
		t.Fatalf("expected error for value count mismatch")
	}
	if _, _, err := InsertInto("t").Columns("a").Values(1).DoUpdateExcluded("a").ToSQL(); err == nil {
		t.Fatalf("expected error for update without conflict target")
	}

	query, _, err := InsertInto("t").Columns("a").Values(1).OnConflict("a").ToSQL()
	if err != nil {
		t.Fatalf("build do nothing insert: %v", err)
	}
	if want := "INSERT INTO t (a) VALUES ($1) ON CONFLICT (a) DO NOTHING"; query != want {
		t.Fatalf("unexpected query: %s", query)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("game_sessions").
		SetExpr("deleted_at", "NOW()").
		Set("name", "renamed").
		Where(Eq("public_id", "s1"), IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE game_sessions SET deleted_at = NOW(), name = $1 WHERE public_id = $2 AND deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "renamed" || args[1] != "s1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExprRewritesPlaceholders(t *testing.T) {
	query, args, err := Select("public_id").
		From("game_sessions").
		Where(Eq("is_live_mode", true), Expr("updated_at > ?", time.Unix(0, 0))).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if want := "SELECT public_id FROM game_sessions WHERE is_live_mode = $1 AND updated_at > $2"; query != want {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type sampleRow struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Ignored string `db:"-"`
	private string
	Untagged string
}

func TestInsertModel(t *testing.T) {
	cols, err := ColumnsFromModel(sampleRow{})
	if err != nil {
		t.Fatalf("columns from model: %v", err)
	}
	if len(cols) != 2 || cols[0] != "id" || cols[1] != "name" {
		t.Fatalf("unexpected columns: %v", cols)
	}

	b, err := InsertModel("samples", &sampleRow{ID: 7, Name: "x", private: "p"}, "id")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	query, args, err := b.ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}
	if query != "INSERT INTO samples (name) VALUES ($1)" || len(args) != 1 || args[0] != "x" {
		t.Fatalf("unexpected insert %q %+v", query, args)
	}

	if _, err := ColumnsFromModel((*sampleRow)(nil)); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
