package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectToSQL(t *testing.T) {
	t.Parallel()

	query, args, err := Select("league_id", "matchday", "rows").
		From("league_standings").
		Where(Eq("league_id", "liga-1"), IsNull("deleted_at")).
		OrderBy("matchday DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	wantQuery := "SELECT league_id, matchday, rows FROM league_standings WHERE league_id = $1 AND deleted_at IS NULL ORDER BY matchday DESC LIMIT 1"
	if query != wantQuery {
		t.Fatalf("query = %q, want %q", query, wantQuery)
	}
	if !reflect.DeepEqual(args, []any{"liga-1"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectRequiresTable(t *testing.T) {
	t.Parallel()

	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestInsertToSQLMultiRow(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("league_standings").
		Columns("league_id", "matchday").
		Values("liga-1", 1).
		Values("liga-1", 2).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	wantQuery := "INSERT INTO league_standings (league_id, matchday) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("query = %q, want %q", query, wantQuery)
	}
	if !reflect.DeepEqual(args, []any{"liga-1", 1, "liga-1", 2}) {
		t.Fatalf("args = %v", args)
	}
}

func TestInsertRejectsRaggedRow(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("t").
		Columns("a", "b").
		Values(1).
		ToSQL()
	if err == nil {
		t.Fatal("expected error for row width mismatch")
	}
}

func TestUpdateToSQLWithExpr(t *testing.T) {
	t.Parallel()

	query, args, err := Update("league_standings").
		Set("deleted_at", "2026-08-24").
		SetExpr("updated_at", "NOW()").
		Where(Eq("league_id", "liga-1"), IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	wantQuery := "UPDATE league_standings SET deleted_at = $1, updated_at = NOW() WHERE league_id = $2 AND deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("query = %q, want %q", query, wantQuery)
	}
	if !reflect.DeepEqual(args, []any{"2026-08-24", "liga-1"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestInConditionEmptyValues(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").
		From("t").
		Where(In("id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	if query != "SELECT id FROM t WHERE 1=0" {
		t.Fatalf("query = %q", query)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want empty", args)
	}
}

func TestExprConditionRewritesPlaceholders(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").
		From("t").
		Where(Eq("league_id", "liga-1"), Expr("matchday BETWEEN ? AND ?", 1, 4)).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	wantQuery := "SELECT id FROM t WHERE league_id = $1 AND matchday BETWEEN $2 AND $3"
	if query != wantQuery {
		t.Fatalf("query = %q, want %q", query, wantQuery)
	}
	if !reflect.DeepEqual(args, []any{"liga-1", 1, 4}) {
		t.Fatalf("args = %v", args)
	}
}

func TestInsertModelUsesDBTags(t *testing.T) {
	t.Parallel()

	type row struct {
		LeagueID string `db:"league_id"`
		Matchday int    `db:"matchday"`
		Ignored  string `db:"-"`
		Untagged string
	}

	query, args, err := InsertModel("league_standings", row{LeagueID: "liga-1", Matchday: 3}, "ON CONFLICT DO NOTHING")
	if err != nil {
		t.Fatalf("InsertModel: %v", err)
	}

	wantQuery := "INSERT INTO league_standings (league_id, matchday) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("query = %q, want %q", query, wantQuery)
	}
	if !reflect.DeepEqual(args, []any{"liga-1", 3}) {
		t.Fatalf("args = %v", args)
	}
}

func TestInsertModelRejectsNonStruct(t *testing.T) {
	t.Parallel()

	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatal("expected error for non-struct model")
	}
}
