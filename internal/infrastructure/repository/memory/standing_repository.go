package memory

import (
	"context"
	"sync"

	"github.com/leagueops/league-rankings/internal/domain/standing"
)

type StandingRepository struct {
	mu    sync.RWMutex
	items map[string]standing.Snapshot
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{
		items: make(map[string]standing.Snapshot),
	}
}

func (r *StandingRepository) GetByLeague(_ context.Context, leagueID string) (standing.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.items[leagueID]
	if !ok {
		return standing.Snapshot{}, false, nil
	}

	return cloneSnapshot(snapshot), true, nil
}

func (r *StandingRepository) ReplaceByLeague(_ context.Context, leagueID string, snapshot standing.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[leagueID] = cloneSnapshot(snapshot)
	return nil
}

func (r *StandingRepository) DeleteByLeague(_ context.Context, leagueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, leagueID)
	return nil
}

// cloneSnapshot keeps stored rows isolated from caller mutation.
func cloneSnapshot(snapshot standing.Snapshot) standing.Snapshot {
	out := standing.Snapshot{Matchday: snapshot.Matchday}
	if len(snapshot.Rows) > 0 {
		out.Rows = make([]standing.Row, len(snapshot.Rows))
		copy(out.Rows, snapshot.Rows)
	}

	return out
}
