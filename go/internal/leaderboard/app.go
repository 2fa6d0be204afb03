// Package leaderboard maintains the per-word all-time top five fastest
// completions, persisted in an external store.
package leaderboard

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mattcreaser/typerace/go/internal/game/events"
)

// maxEntries caps the stored list per word.
const maxEntries = 5

// Store is what the app needs from the persistence layer.
type Store interface {
	GetScores(ctx context.Context, word string) ([]Entry, error)
	PutScores(ctx context.Context, word string, entries []Entry) error
}

// Broadcaster pushes the updated list to all connected clients.
type Broadcaster interface {
	Broadcast(event *events.Event)
}

// App owns the leaderboard read-modify-write sequence.
type App struct {
	store       Store
	broadcaster Broadcaster
}

func NewApp(store Store, broadcaster Broadcaster) *App {
	return &App{store: store, broadcaster: broadcaster}
}

// Record folds a round winner's time into the stored list for the word:
// fetch, append, sort ascending, truncate to the best five, write back, then
// announce the update.
//
// The fetch-mutate-write sequence takes no lock and does no versioned write;
// two rounds completing the same word in close succession can interleave and
// the later write clobbers the earlier one's update. Failures are never
// surfaced to round logic: a failed read counts as "no prior record", a
// failed write leaves the stored list stale and skips the announcement.
func (a *App) Record(ctx context.Context, word, name string, elapsedSeconds float64) {
	entries, err := a.store.GetScores(ctx, word)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("high score fetch failed, starting from empty list")
		entries = nil
	}

	entries = append(entries, Entry{Name: name, ElapsedSeconds: elapsedSeconds})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ElapsedSeconds < entries[j].ElapsedSeconds
	})
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	if err := a.store.PutScores(ctx, word, entries); err != nil {
		log.Error().Err(err).Str("word", word).Msg("high score write failed, update dropped")
		return
	}

	scores := make([]events.HighScoreEntry, len(entries))
	for i, e := range entries {
		scores[i] = events.HighScoreEntry{Name: e.Name, ElapsedSeconds: e.ElapsedSeconds}
	}

	event, err := events.New(events.EventTypeHighScores, events.HighScoresPayload{
		Word:   word,
		Scores: scores,
	})
	if err != nil {
		log.Error().Err(err).Str("word", word).Msg("failed to build highScores event")
		return
	}
	a.broadcaster.Broadcast(event)

	log.Info().
		Str("word", word).
		Str("player", name).
		Float64("elapsed_seconds", elapsedSeconds).
		Int("entries", len(entries)).
		Msg("high scores updated")
}
