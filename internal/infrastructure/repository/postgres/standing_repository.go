package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/leagueops/league-rankings/internal/domain/standing"
	qb "github.com/leagueops/league-rankings/internal/platform/querybuilder"
)

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) GetByLeague(ctx context.Context, leagueID string) (standing.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("league_standings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("position", "team_name").
		ToSQL()
	if err != nil {
		return standing.Snapshot{}, false, fmt.Errorf("build get league standings query: %w", err)
	}

	var rows []leagueStandingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return standing.Snapshot{}, false, fmt.Errorf("get league standings: %w", err)
	}
	if len(rows) == 0 {
		return standing.Snapshot{}, false, nil
	}

	out := standing.Snapshot{
		Matchday: rows[0].Matchday,
		Rows:     make([]standing.Row, 0, len(rows)),
	}
	for _, row := range rows {
		out.Rows = append(out.Rows, standing.Row{
			Position: row.Position,
			TeamName: row.TeamName,
			Points:   row.Points,
		})
	}

	return out, true, nil
}

func (r *StandingRepository) ReplaceByLeague(ctx context.Context, leagueID string, snapshot standing.Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace league standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := softDeleteLeague(ctx, tx, leagueID); err != nil {
		return err
	}

	for _, row := range snapshot.Rows {
		insertModel := leagueStandingInsertModel{
			LeagueID: leagueID,
			Matchday: snapshot.Matchday,
			Position: row.Position,
			TeamName: row.TeamName,
			Points:   row.Points,
		}
		query, args, err := qb.InsertModel("league_standings", insertModel, `ON CONFLICT (league_id, team_name) WHERE deleted_at IS NULL
DO UPDATE SET
    matchday = EXCLUDED.matchday,
    position = EXCLUDED.position,
    points = EXCLUDED.points,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert league standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert league standing team=%s: %w", row.TeamName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace league standings tx: %w", err)
	}
	return nil
}

func (r *StandingRepository) DeleteByLeague(ctx context.Context, leagueID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx delete league standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := softDeleteLeague(ctx, tx, leagueID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete league standings tx: %w", err)
	}
	return nil
}

func softDeleteLeague(ctx context.Context, tx *sqlx.Tx, leagueID string) error {
	query, args, err := qb.Update("league_standings").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear league standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear league standings: %w", err)
	}
	return nil
}
