package usecase

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/leagueops/league-rankings/internal/domain/match"
	"github.com/leagueops/league-rankings/internal/domain/standing"
	"github.com/leagueops/league-rankings/internal/platform/logging"
)

// IngestionService streams result lines from a reader and writes a standings
// block to the writer each time a matchday completes, plus a final block for
// the matchday in progress at end of input.
type IngestionService struct {
	rules         standing.Rules
	skipMalformed bool
	logger        *logging.Logger
}

func NewIngestionService(rules standing.Rules, skipMalformed bool, logger *logging.Logger) *IngestionService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &IngestionService{
		rules:         rules,
		skipMalformed: skipMalformed,
		logger:        logger,
	}
}

type IngestionStats struct {
	Lines     int
	Applied   int
	Skipped   int
	Matchdays int
}

func (s *IngestionService) Run(ctx context.Context, r io.Reader, w io.Writer) (IngestionStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Run")
	defer span.End()

	if r == nil {
		return IngestionStats{}, fmt.Errorf("%w: reader is required", ErrInvalidInput)
	}
	if w == nil {
		return IngestionStats{}, fmt.Errorf("%w: writer is required", ErrInvalidInput)
	}

	var stats IngestionStats
	table := standing.NewTable(s.rules)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	wrote := false
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Lines++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		m, err := match.Parse(line)
		if err != nil {
			if s.skipMalformed {
				stats.Skipped++
				s.logger.WarnContext(ctx, "skipping malformed result line",
					"line", stats.Lines,
					"error", err.Error(),
				)
				continue
			}
			return stats, fmt.Errorf("line %d: %w", stats.Lines, err)
		}

		completed, crossed := table.Ingest(m)
		if crossed {
			if err := s.writeBlock(w, completed, wrote); err != nil {
				return stats, err
			}
			wrote = true
			stats.Matchdays++
		}
		stats.Applied++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read result lines: %w", err)
	}

	final := table.Snapshot()
	if len(final.Rows) > 0 {
		if err := s.writeBlock(w, final, wrote); err != nil {
			return stats, err
		}
		stats.Matchdays++
	}

	return stats, nil
}

func (s *IngestionService) writeBlock(w io.Writer, snapshot standing.Snapshot, separator bool) error {
	if separator {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write standings: %w", err)
		}
	}
	if _, err := io.WriteString(w, RenderSnapshot(snapshot)); err != nil {
		return fmt.Errorf("write standings: %w", err)
	}

	return nil
}
