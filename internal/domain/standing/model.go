package standing

// Row is one ranked line of a standings snapshot.
type Row struct {
	Position int
	TeamName string
	Points   int
}

// Snapshot is a point-in-time ranked view of a table, limited to the
// configured top-N count.
type Snapshot struct {
	Matchday int
	Rows     []Row
}

// Rules holds the scoring configuration for a season run.
type Rules struct {
	WinPoints  int
	DrawPoints int
	TopN       int
}

func DefaultRules() Rules {
	return Rules{
		WinPoints:  3,
		DrawPoints: 1,
		TopN:       3,
	}
}
