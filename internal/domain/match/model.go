package match

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNoGameData      = errors.New("no game data found")
	ErrInvalidScore    = errors.New("invalid score")
	ErrMissingTeamName = errors.New("missing team name")
)

// Match is one played game as reported by the results source.
// Scores are capped at 255; anything larger is rejected at parse time.
type Match struct {
	HomeName  string
	HomeScore uint8
	AwayName  string
	AwayScore uint8
}

type OutcomeKind string

const (
	OutcomeWinLoss OutcomeKind = "win_loss"
	OutcomeDraw    OutcomeKind = "draw"
)

// Outcome classifies a match. For win/loss First is the winner and Second
// the loser; for a draw First is the home side.
type Outcome struct {
	Kind   OutcomeKind
	First  string
	Second string
}

// Parse reads one result line in the form
// "{home name} {home score}, {away name} {away score}".
// Team names may contain spaces, so each side is split on its last space.
func Parse(line string) (Match, error) {
	sides := strings.Split(line, ", ")
	if len(sides) != 2 {
		return Match{}, fmt.Errorf("%w in line %q", ErrNoGameData, line)
	}

	homeName, homeScore, err := parseSide(sides[0])
	if err != nil {
		return Match{}, fmt.Errorf("home side of line %q: %w", line, err)
	}
	awayName, awayScore, err := parseSide(sides[1])
	if err != nil {
		return Match{}, fmt.Errorf("away side of line %q: %w", line, err)
	}

	return Match{
		HomeName:  homeName,
		HomeScore: homeScore,
		AwayName:  awayName,
		AwayScore: awayScore,
	}, nil
}

func parseSide(segment string) (string, uint8, error) {
	idx := strings.LastIndexByte(segment, ' ')
	if idx <= 0 {
		return "", 0, fmt.Errorf("%w in segment %q", ErrMissingTeamName, segment)
	}

	name := segment[:idx]
	if strings.TrimSpace(name) == "" {
		return "", 0, fmt.Errorf("%w in segment %q", ErrMissingTeamName, segment)
	}

	score, err := strconv.ParseUint(segment[idx+1:], 10, 8)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidScore, segment[idx+1:], err)
	}

	return name, uint8(score), nil
}

func (m Match) Outcome() Outcome {
	switch {
	case m.HomeScore > m.AwayScore:
		return Outcome{Kind: OutcomeWinLoss, First: m.HomeName, Second: m.AwayName}
	case m.AwayScore > m.HomeScore:
		return Outcome{Kind: OutcomeWinLoss, First: m.AwayName, Second: m.HomeName}
	default:
		return Outcome{Kind: OutcomeDraw, First: m.HomeName, Second: m.AwayName}
	}
}
