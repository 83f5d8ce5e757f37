package standing

import "context"

// Repository stores the latest emitted snapshot per league.
type Repository interface {
	GetByLeague(ctx context.Context, leagueID string) (Snapshot, bool, error)
	ReplaceByLeague(ctx context.Context, leagueID string, snapshot Snapshot) error
	DeleteByLeague(ctx context.Context, leagueID string) error
}
