package standing

import (
	"sort"

	"github.com/leagueops/league-rankings/internal/domain/match"
)

// Table accumulates points for one season run. It infers matchday boundaries
// from team repetition: every team is expected to play exactly once per
// matchday, and matches of the same matchday arrive contiguously. Byes,
// interleaved or out-of-order streams mis-detect boundaries; callers own the
// ordering invariant.
//
// Table is not safe for concurrent use. A concurrent host must serialize
// Ingest calls, which the ordering requirement forces anyway.
type Table struct {
	points      map[string]int
	playedRound map[string]struct{}
	matchday    int
	rules       Rules
}

func NewTable(rules Rules) *Table {
	if rules.WinPoints <= 0 {
		rules.WinPoints = DefaultRules().WinPoints
	}
	if rules.DrawPoints <= 0 {
		rules.DrawPoints = DefaultRules().DrawPoints
	}
	if rules.TopN <= 0 {
		rules.TopN = DefaultRules().TopN
	}

	return &Table{
		points:      make(map[string]int),
		playedRound: make(map[string]struct{}),
		matchday:    1,
		rules:       rules,
	}
}

// Ingest applies one match. When either team already played this round a new
// matchday has begun: the completed matchday's snapshot is returned with
// crossed=true, the round set is cleared and the counter incremented, all
// before the new match's points are applied.
func (t *Table) Ingest(m match.Match) (completed Snapshot, crossed bool) {
	_, homePlayed := t.playedRound[m.HomeName]
	_, awayPlayed := t.playedRound[m.AwayName]
	if homePlayed || awayPlayed {
		completed = t.Snapshot()
		crossed = true
		t.playedRound = make(map[string]struct{})
		t.matchday++
	}

	switch outcome := m.Outcome(); outcome.Kind {
	case match.OutcomeWinLoss:
		t.addPoints(outcome.First, t.rules.WinPoints)
		// The loser is registered with an explicit zero entry so it can
		// still appear in a full ranking.
		t.addPoints(outcome.Second, 0)
	case match.OutcomeDraw:
		t.addPoints(outcome.First, t.rules.DrawPoints)
		t.addPoints(outcome.Second, t.rules.DrawPoints)
	}

	t.playedRound[m.HomeName] = struct{}{}
	t.playedRound[m.AwayName] = struct{}{}

	return completed, crossed
}

// Snapshot ranks all teams by points descending, ties broken by name
// ascending, and keeps the top-N rows. An empty table yields no rows.
func (t *Table) Snapshot() Snapshot {
	rows := make([]Row, 0, len(t.points))
	for name, pts := range t.points {
		rows = append(rows, Row{TeamName: name, Points: pts})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].TeamName < rows[j].TeamName
	})

	if len(rows) > t.rules.TopN {
		rows = rows[:t.rules.TopN]
	}
	for i := range rows {
		rows[i].Position = i + 1
	}

	return Snapshot{Matchday: t.matchday, Rows: rows}
}

// Matchday reports the round currently being accumulated (starts at 1).
func (t *Table) Matchday() int {
	return t.matchday
}

// TeamCount reports how many distinct teams have been registered so far.
func (t *Table) TeamCount() int {
	return len(t.points)
}

// PointsFor returns a team's accumulated points. Teams never seen report
// ok=false; teams that only lost report 0 with ok=true.
func (t *Table) PointsFor(team string) (int, bool) {
	pts, ok := t.points[team]
	return pts, ok
}

func (t *Table) addPoints(team string, pts int) {
	t.points[team] += pts
}
