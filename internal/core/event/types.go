package event

// Level lifecycle notifications consumed by the presentation layer. All of
// them travel through Emit and are observed one tick after they happen.

type LevelStarted struct {
	RunID      string
	LevelID    string
	TotalWaves int
}

type LevelRestarted struct {
	LevelID string
}

type LevelWon struct {
	RunID   string
	LevelID string
}

type LevelLost struct {
	RunID   string
	LevelID string
}

// WaveStarted is raised when a wave's ordinal is published, before its start
// delay runs. Countdown is the start delay in seconds.
type WaveStarted struct {
	RunID     string
	Ordinal   int
	Total     int
	Final     bool
	Countdown float64
}

type EnergyChanged struct {
	Current int
	Start   int
}

type GoldChanged struct {
	Gold int
}

type PlayerLeveledUp struct {
	Level int
}
