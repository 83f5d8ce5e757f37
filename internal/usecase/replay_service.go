package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/leagueops/league-rankings/internal/domain/match"
	"github.com/leagueops/league-rankings/internal/domain/standing"
	"github.com/leagueops/league-rankings/internal/platform/id"
)

// ReplayService recomputes standings for many result sources at once, one
// independent table per source, on a bounded worker pool.
type ReplayService struct {
	rules standing.Rules
	ids   id.Generator
}

func NewReplayService(rules standing.Rules, ids id.Generator) *ReplayService {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}

	return &ReplayService{
		rules: rules,
		ids:   ids,
	}
}

type ReplaySource struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

type ReplayInput struct {
	Sources       []ReplaySource
	MaxWorkers    int
	SkipMalformed bool
}

type ReplayResult struct {
	RunID        string               `json:"run_id"`
	SourceCount  int                  `json:"source_count"`
	SuccessCount int                  `json:"success_count"`
	FailedCount  int                  `json:"failed_count"`
	WorkerCount  int                  `json:"worker_count"`
	Sources      []ReplaySourceResult `json:"sources"`
}

type ReplaySourceResult struct {
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	Matchday   int               `json:"matchday"`
	Applied    int               `json:"applied"`
	Skipped    int               `json:"skipped"`
	Snapshot   standing.Snapshot `json:"snapshot"`
	DurationMs int64             `json:"duration_ms"`
	Message    string            `json:"message,omitempty"`
}

const (
	replayStatusSuccess = "success"
	replayStatusFailed  = "failed"
)

func (s *ReplayService) Replay(ctx context.Context, input ReplayInput) (ReplayResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReplayService.Replay")
	defer span.End()

	if len(input.Sources) == 0 {
		return ReplayResult{}, fmt.Errorf("%w: replay sources are required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(input.Sources))
	for idx := range input.Sources {
		input.Sources[idx].Name = strings.TrimSpace(input.Sources[idx].Name)
		name := input.Sources[idx].Name
		if name == "" {
			return ReplayResult{}, fmt.Errorf("%w: replay source %d has no name", ErrInvalidInput, idx)
		}
		if _, dup := seen[name]; dup {
			return ReplayResult{}, fmt.Errorf("%w: duplicate replay source %q", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return ReplayResult{}, fmt.Errorf("generate run id: %w", err)
	}

	workerCount := input.MaxWorkers
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(input.Sources) {
		workerCount = len(input.Sources)
	}

	result := ReplayResult{
		RunID:       runID,
		SourceCount: len(input.Sources),
		WorkerCount: workerCount,
		Sources:     make([]ReplaySourceResult, 0, len(input.Sources)),
	}

	results := make(chan ReplaySourceResult, len(input.Sources))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, source := range input.Sources {
		source := source
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.replaySource(ctx, source, input.SkipMalformed)
			row.DurationMs = time.Since(start).Milliseconds()

			if row.Status == replayStatusSuccess {
				successCount.Add(1)
			} else {
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return ReplayResult{}, fmt.Errorf("submit source to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Sources = append(result.Sources, row)
	}

	sort.SliceStable(result.Sources, func(i, j int) bool {
		return result.Sources[i].Name < result.Sources[j].Name
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	return result, nil
}

func (s *ReplayService) replaySource(ctx context.Context, source ReplaySource, skipMalformed bool) ReplaySourceResult {
	row := ReplaySourceResult{
		Name:   source.Name,
		Status: replayStatusSuccess,
	}

	table := standing.NewTable(s.rules)
	for idx, line := range source.Lines {
		if err := ctx.Err(); err != nil {
			row.Status = replayStatusFailed
			row.Message = err.Error()
			return row
		}

		m, err := match.Parse(line)
		if err != nil {
			if skipMalformed {
				row.Skipped++
				continue
			}
			row.Status = replayStatusFailed
			row.Message = fmt.Sprintf("line %d: %s", idx+1, err)
			return row
		}

		table.Ingest(m)
		row.Applied++
	}

	row.Snapshot = table.Snapshot()
	row.Matchday = table.Matchday()

	return row
}
