package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leagueops/league-rankings/internal/domain/match"
	"github.com/leagueops/league-rankings/internal/domain/standing"
)

const referenceSeasonOutput = `Matchday 1
Capitola Seahorses, 3 pts
Felton Lumberjacks, 3 pts
San Jose Earthquakes, 1 pt

Matchday 2
Capitola Seahorses, 4 pts
Aptos FC, 3 pts
Felton Lumberjacks, 3 pts

Matchday 3
Aptos FC, 6 pts
Felton Lumberjacks, 6 pts
Monterey United, 6 pts

Matchday 4
Aptos FC, 9 pts
Felton Lumberjacks, 7 pts
Monterey United, 6 pts
`

func TestIngestionServiceRunReferenceSeason(t *testing.T) {
	t.Parallel()

	svc := NewIngestionService(standing.DefaultRules(), false, nil)
	input := strings.NewReader(strings.Join(referenceSeason, "\n") + "\n")
	var output strings.Builder

	stats, err := svc.Run(context.Background(), input, &output)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if output.String() != referenceSeasonOutput {
		t.Fatalf("output:\n%s\nwant:\n%s", output.String(), referenceSeasonOutput)
	}
	if stats.Applied != len(referenceSeason) {
		t.Fatalf("applied = %d, want %d", stats.Applied, len(referenceSeason))
	}
	if stats.Matchdays != 4 {
		t.Fatalf("matchdays = %d, want 4", stats.Matchdays)
	}
	if stats.Skipped != 0 {
		t.Fatalf("skipped = %d, want 0", stats.Skipped)
	}
}

func TestIngestionServiceRunAbortsOnMalformedLine(t *testing.T) {
	t.Parallel()

	svc := NewIngestionService(standing.DefaultRules(), false, nil)
	input := strings.NewReader("Aptos FC 1, Capitola Seahorses 0\nnot a result line\n")
	var output strings.Builder

	_, err := svc.Run(context.Background(), input, &output)
	if !errors.Is(err, match.ErrNoGameData) {
		t.Fatalf("expected ErrNoGameData, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error should name the offending line: %v", err)
	}
}

func TestIngestionServiceRunSkipsMalformedWhenConfigured(t *testing.T) {
	t.Parallel()

	svc := NewIngestionService(standing.DefaultRules(), true, nil)
	input := strings.NewReader(
		"Aptos FC 1, Capitola Seahorses 0\n" +
			"garbage\n" +
			"Felton Lumberjacks 2, Monterey United 2\n")
	var output strings.Builder

	stats, err := svc.Run(context.Background(), input, &output)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Applied != 2 || stats.Skipped != 1 {
		t.Fatalf("applied=%d skipped=%d, want 2 and 1", stats.Applied, stats.Skipped)
	}
	if !strings.HasPrefix(output.String(), "Matchday 1\n") {
		t.Fatalf("unexpected output:\n%s", output.String())
	}
}

func TestIngestionServiceRunEmptyInput(t *testing.T) {
	t.Parallel()

	svc := NewIngestionService(standing.DefaultRules(), false, nil)
	var output strings.Builder

	stats, err := svc.Run(context.Background(), strings.NewReader(""), &output)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if output.Len() != 0 {
		t.Fatalf("empty input produced output:\n%s", output.String())
	}
	if stats.Matchdays != 0 {
		t.Fatalf("matchdays = %d, want 0", stats.Matchdays)
	}
}

func TestIngestionServiceRunIgnoresBlankLines(t *testing.T) {
	t.Parallel()

	svc := NewIngestionService(standing.DefaultRules(), false, nil)
	input := strings.NewReader("\nAptos FC 1, Capitola Seahorses 0\n\n")
	var output strings.Builder

	stats, err := svc.Run(context.Background(), input, &output)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Applied != 1 {
		t.Fatalf("applied = %d, want 1", stats.Applied)
	}

	want := "Matchday 1\n" +
		"Aptos FC, 3 pts\n" +
		"Capitola Seahorses, 0 pts\n"
	if output.String() != want {
		t.Fatalf("output:\n%q\nwant:\n%q", output.String(), want)
	}
}
