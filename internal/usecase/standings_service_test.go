package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/leagueops/league-rankings/internal/domain/standing"
)

var referenceSeason = []string{
	"San Jose Earthquakes 3, Santa Cruz Slugs 3",
	"Capitola Seahorses 1, Aptos FC 0",
	"Felton Lumberjacks 2, Monterey United 0",
	"Felton Lumberjacks 1, Aptos FC 2",
	"Santa Cruz Slugs 0, Capitola Seahorses 0",
	"Monterey United 4, San Jose Earthquakes 2",
	"Santa Cruz Slugs 2, Aptos FC 3",
	"San Jose Earthquakes 1, Felton Lumberjacks 4",
	"Monterey United 1, Capitola Seahorses 0",
	"Aptos FC 2, Monterey United 0",
	"Capitola Seahorses 5, San Jose Earthquakes 5",
	"Santa Cruz Slugs 1, Felton Lumberjacks 1",
}

type stubStandingRepo struct {
	mu        sync.Mutex
	snapshots map[string]standing.Snapshot

	replaceErr error
	deleteErr  error
}

func newStubStandingRepo() *stubStandingRepo {
	return &stubStandingRepo{snapshots: make(map[string]standing.Snapshot)}
}

func (r *stubStandingRepo) GetByLeague(_ context.Context, leagueID string) (standing.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, ok := r.snapshots[leagueID]
	return snapshot, ok, nil
}

func (r *stubStandingRepo) ReplaceByLeague(_ context.Context, leagueID string, snapshot standing.Snapshot) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[leagueID] = snapshot
	return nil
}

func (r *stubStandingRepo) DeleteByLeague(_ context.Context, leagueID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.snapshots, leagueID)
	return nil
}

func TestStandingsServiceIngestReferenceSeason(t *testing.T) {
	t.Parallel()

	repo := newStubStandingRepo()
	svc := NewStandingsService(standing.DefaultRules(), repo)

	result, err := svc.Ingest(context.Background(), IngestInput{
		LeagueID: "liga-1",
		Lines:    referenceSeason,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if result.Applied != len(referenceSeason) {
		t.Fatalf("applied = %d, want %d", result.Applied, len(referenceSeason))
	}
	if result.Matchday != 4 {
		t.Fatalf("matchday = %d, want 4", result.Matchday)
	}
	if len(result.Completed) != 3 {
		t.Fatalf("completed matchdays = %d, want 3", len(result.Completed))
	}
	for idx, snapshot := range result.Completed {
		if snapshot.Matchday != idx+1 {
			t.Fatalf("completed[%d].Matchday = %d, want %d", idx, snapshot.Matchday, idx+1)
		}
	}

	if result.Current.Rows[0].TeamName != "Aptos FC" || result.Current.Rows[0].Points != 9 {
		t.Fatalf("unexpected leader: %+v", result.Current.Rows[0])
	}

	persisted, ok, err := repo.GetByLeague(context.Background(), "liga-1")
	if err != nil || !ok {
		t.Fatalf("persisted snapshot missing (ok=%t, err=%v)", ok, err)
	}
	if persisted.Matchday != 4 {
		t.Fatalf("persisted matchday = %d, want 4", persisted.Matchday)
	}
}

func TestStandingsServiceIngestValidation(t *testing.T) {
	t.Parallel()

	svc := NewStandingsService(standing.DefaultRules(), nil)

	if _, err := svc.Ingest(context.Background(), IngestInput{LeagueID: " ", Lines: referenceSeason}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank league id, got %v", err)
	}
	if _, err := svc.Ingest(context.Background(), IngestInput{LeagueID: "liga-1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty lines, got %v", err)
	}
}

func TestStandingsServiceIngestMalformedLine(t *testing.T) {
	t.Parallel()

	svc := NewStandingsService(standing.DefaultRules(), nil)
	lines := []string{
		"Aptos FC 1, Capitola Seahorses 0",
		"not a result line",
		"Felton Lumberjacks 2, Monterey United 2",
	}

	_, err := svc.Ingest(context.Background(), IngestInput{LeagueID: "liga-1", Lines: lines})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error should name the offending line: %v", err)
	}

	result, err := svc.Ingest(context.Background(), IngestInput{
		LeagueID:      "liga-2",
		Lines:         lines,
		SkipMalformed: true,
	})
	if err != nil {
		t.Fatalf("Ingest with skip policy: %v", err)
	}
	if result.Applied != 2 || result.Skipped != 1 {
		t.Fatalf("applied=%d skipped=%d, want 2 and 1", result.Applied, result.Skipped)
	}
}

func TestStandingsServiceSnapshotFallsBackToRepository(t *testing.T) {
	t.Parallel()

	repo := newStubStandingRepo()
	repo.snapshots["archived"] = standing.Snapshot{
		Matchday: 7,
		Rows:     []standing.Row{{Position: 1, TeamName: "Aptos FC", Points: 21}},
	}

	svc := NewStandingsService(standing.DefaultRules(), repo)
	snapshot, err := svc.Snapshot(context.Background(), "archived")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.Matchday != 7 {
		t.Fatalf("matchday = %d, want 7", snapshot.Matchday)
	}

	if _, err := svc.Snapshot(context.Background(), "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStandingsServiceReset(t *testing.T) {
	t.Parallel()

	repo := newStubStandingRepo()
	svc := NewStandingsService(standing.DefaultRules(), repo)

	if _, err := svc.Ingest(context.Background(), IngestInput{
		LeagueID: "liga-1",
		Lines:    referenceSeason[:3],
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if err := svc.Reset(context.Background(), "liga-1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := svc.Snapshot(context.Background(), "liga-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after reset, got %v", err)
	}
	if _, ok, _ := repo.GetByLeague(context.Background(), "liga-1"); ok {
		t.Fatal("persisted snapshot should be gone after reset")
	}
}

func TestStandingsServiceSessionsAreIndependent(t *testing.T) {
	t.Parallel()

	svc := NewStandingsService(standing.DefaultRules(), nil)

	if _, err := svc.Ingest(context.Background(), IngestInput{
		LeagueID: "liga-1",
		Lines:    []string{"Aptos FC 1, Capitola Seahorses 0"},
	}); err != nil {
		t.Fatalf("Ingest liga-1: %v", err)
	}
	if _, err := svc.Ingest(context.Background(), IngestInput{
		LeagueID: "liga-2",
		Lines:    []string{"Zebras 2, Aardvarks 2"},
	}); err != nil {
		t.Fatalf("Ingest liga-2: %v", err)
	}

	one, err := svc.Snapshot(context.Background(), "liga-1")
	if err != nil {
		t.Fatalf("Snapshot liga-1: %v", err)
	}
	if one.Rows[0].TeamName != "Aptos FC" {
		t.Fatalf("liga-1 leader = %s, want Aptos FC", one.Rows[0].TeamName)
	}

	two, err := svc.Snapshot(context.Background(), "liga-2")
	if err != nil {
		t.Fatalf("Snapshot liga-2: %v", err)
	}
	if two.Rows[0].TeamName != "Aardvarks" {
		t.Fatalf("liga-2 leader = %s, want Aardvarks", two.Rows[0].TeamName)
	}
}

func TestRenderSnapshotPluralizesPoints(t *testing.T) {
	t.Parallel()

	got := RenderSnapshot(standing.Snapshot{
		Matchday: 1,
		Rows: []standing.Row{
			{Position: 1, TeamName: "Capitola Seahorses", Points: 3},
			{Position: 2, TeamName: "San Jose Earthquakes", Points: 1},
			{Position: 3, TeamName: "Aptos FC", Points: 0},
		},
	})

	want := "Matchday 1\n" +
		"Capitola Seahorses, 3 pts\n" +
		"San Jose Earthquakes, 1 pt\n" +
		"Aptos FC, 0 pts\n"
	if got != want {
		t.Fatalf("rendered snapshot:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderSnapshotEmpty(t *testing.T) {
	t.Parallel()

	if got := RenderSnapshot(standing.Snapshot{Matchday: 1}); got != "" {
		t.Fatalf("empty snapshot rendered %q, want empty string", got)
	}
}

func TestRenderSeasonSeparators(t *testing.T) {
	t.Parallel()

	snapshots := []standing.Snapshot{
		{Matchday: 1, Rows: []standing.Row{{Position: 1, TeamName: "Aptos FC", Points: 3}}},
		{Matchday: 2},
		{Matchday: 3, Rows: []standing.Row{{Position: 1, TeamName: "Aptos FC", Points: 6}}},
	}

	want := "Matchday 1\n" +
		"Aptos FC, 3 pts\n" +
		"\n" +
		"Matchday 3\n" +
		"Aptos FC, 6 pts\n"
	if got := RenderSeason(snapshots); got != want {
		t.Fatalf("rendered season:\n%q\nwant:\n%q", got, want)
	}
}
