package events

// Event payload types shared between the game, gateway and relay packages.

// PlayerScore is one roster entry as sent to clients.
type PlayerScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerListPayload is the payload for a setPlayerList event: the full
// roster snapshot, ordered by descending score.
type PlayerListPayload []PlayerScore

// RoundStartedPayload is the payload for a startRound event. RoundSeconds
// carries the server-authoritative round length for client countdowns.
type RoundStartedPayload struct {
	Word         string  `json:"word"`
	RoundSeconds float64 `json:"roundSeconds"`
}

// RoundScore is one player's submission within a round.
type RoundScore struct {
	Player         string  `json:"player"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// RoundEndedPayload is the payload for an endRound event. Scores is sorted
// ascending by elapsed time and may be empty when nobody answered in time.
type RoundEndedPayload struct {
	Word   string       `json:"word"`
	Scores []RoundScore `json:"scores"`
}

// HighScoreEntry is one all-time leaderboard entry for a word.
type HighScoreEntry struct {
	Name           string  `json:"name"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// HighScoresPayload is the payload for a highScores event. Scores holds at
// most five entries, ascending by elapsed time.
type HighScoresPayload struct {
	Word   string           `json:"word"`
	Scores []HighScoreEntry `json:"scores"`
}
