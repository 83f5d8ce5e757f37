package postgres

import "time"

type leagueStandingTableModel struct {
	ID        int64      `db:"id"`
	LeagueID  string     `db:"league_id"`
	Matchday  int        `db:"matchday"`
	Position  int        `db:"position"`
	TeamName  string     `db:"team_name"`
	Points    int        `db:"points"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type leagueStandingInsertModel struct {
	LeagueID string `db:"league_id"`
	Matchday int    `db:"matchday"`
	Position int    `db:"position"`
	TeamName string `db:"team_name"`
	Points   int    `db:"points"`
}
