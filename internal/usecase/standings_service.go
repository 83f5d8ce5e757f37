package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/leagueops/league-rankings/internal/domain/match"
	"github.com/leagueops/league-rankings/internal/domain/standing"
)

// StandingsService keeps one running points table per league and mirrors the
// latest snapshot into the standing repository after every ingest.
type StandingsService struct {
	rules standing.Rules
	repo  standing.Repository

	mu       sync.Mutex
	sessions map[string]*leagueSession
}

// leagueSession serializes ingests for a single league so that match order,
// and therefore matchday boundaries, stays deterministic under concurrency.
type leagueSession struct {
	mu    sync.Mutex
	table *standing.Table
}

func NewStandingsService(rules standing.Rules, repo standing.Repository) *StandingsService {
	return &StandingsService{
		rules:    rules,
		repo:     repo,
		sessions: make(map[string]*leagueSession),
	}
}

type IngestInput struct {
	LeagueID      string
	Lines         []string
	SkipMalformed bool
}

type IngestResult struct {
	Applied   int                 `json:"applied"`
	Skipped   int                 `json:"skipped"`
	Matchday  int                 `json:"matchday"`
	Completed []standing.Snapshot `json:"completed_matchdays,omitempty"`
	Current   standing.Snapshot   `json:"current"`
}

// Ingest applies result lines to the league's table in order. Matchdays
// completed while applying are returned alongside the running snapshot.
func (s *StandingsService) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Ingest")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.LeagueID == "" {
		return IngestResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if len(input.Lines) == 0 {
		return IngestResult{}, fmt.Errorf("%w: result lines are required", ErrInvalidInput)
	}

	session := s.session(input.LeagueID)
	session.mu.Lock()
	defer session.mu.Unlock()

	var out IngestResult
	for idx, line := range input.Lines {
		m, err := match.Parse(line)
		if err != nil {
			if input.SkipMalformed {
				out.Skipped++
				continue
			}
			return IngestResult{}, fmt.Errorf("%w: line %d: %s", ErrInvalidInput, idx+1, err)
		}

		completed, crossed := session.table.Ingest(m)
		if crossed {
			out.Completed = append(out.Completed, completed)
		}
		out.Applied++
	}

	out.Current = session.table.Snapshot()
	out.Matchday = session.table.Matchday()

	if s.repo != nil {
		if err := s.repo.ReplaceByLeague(ctx, input.LeagueID, out.Current); err != nil {
			return IngestResult{}, fmt.Errorf("replace league standings: %w", err)
		}
	}

	return out, nil
}

// Snapshot returns the league's current standings, falling back to the
// repository for leagues without an in-memory session.
func (s *StandingsService) Snapshot(ctx context.Context, leagueID string) (standing.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Snapshot")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return standing.Snapshot{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	session, ok := s.sessions[leagueID]
	s.mu.Unlock()
	if ok {
		session.mu.Lock()
		defer session.mu.Unlock()
		return session.table.Snapshot(), nil
	}

	if s.repo == nil {
		return standing.Snapshot{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	snapshot, found, err := s.repo.GetByLeague(ctx, leagueID)
	if err != nil {
		return standing.Snapshot{}, fmt.Errorf("get league standings: %w", err)
	}
	if !found {
		return standing.Snapshot{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return snapshot, nil
}

// SnapshotText renders the league's current standings as plain text.
func (s *StandingsService) SnapshotText(ctx context.Context, leagueID string) (string, error) {
	snapshot, err := s.Snapshot(ctx, leagueID)
	if err != nil {
		return "", err
	}

	return RenderSnapshot(snapshot), nil
}

// Reset drops the league's session and its persisted snapshot.
func (s *StandingsService) Reset(ctx context.Context, leagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Reset")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	delete(s.sessions, leagueID)
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.DeleteByLeague(ctx, leagueID); err != nil {
			return fmt.Errorf("delete league standings: %w", err)
		}
	}

	return nil
}

func (s *StandingsService) session(leagueID string) *leagueSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[leagueID]
	if !ok {
		session = &leagueSession{table: standing.NewTable(s.rules)}
		s.sessions[leagueID] = session
	}

	return session
}

// RenderSnapshot renders one standings block. An empty table renders as "".
func RenderSnapshot(snapshot standing.Snapshot) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeSnapshot(buf, snapshot)

	return buf.String()
}

// RenderSeason renders snapshots in order with a blank line between blocks.
// There is no leading or trailing blank line.
func RenderSeason(snapshots []standing.Snapshot) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	wrote := false
	for _, snapshot := range snapshots {
		if len(snapshot.Rows) == 0 {
			continue
		}
		if wrote {
			buf.WriteString("\n")
		}
		writeSnapshot(buf, snapshot)
		wrote = true
	}

	return buf.String()
}

func writeSnapshot(buf *bytebufferpool.ByteBuffer, snapshot standing.Snapshot) {
	if len(snapshot.Rows) == 0 {
		return
	}

	fmt.Fprintf(buf, "Matchday %d\n", snapshot.Matchday)
	for _, row := range snapshot.Rows {
		fmt.Fprintf(buf, "%s, %d %s\n", row.TeamName, row.Points, pointsUnit(row.Points))
	}
}

func pointsUnit(points int) string {
	if points == 1 {
		return "pt"
	}

	return "pts"
}
