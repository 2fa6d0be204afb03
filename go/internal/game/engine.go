package game

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mattcreaser/typerace/go/internal/game/events"
)

// State is the engine's lifecycle phase.
type State int

const (
	// StateIdle means no round is live and no timer is pending.
	StateIdle State = iota
	// StateActive means a word is live and scores are being collected.
	StateActive
	// StateCooldown is the fixed pause between a round ending and the next
	// one starting.
	StateCooldown
)

// recordTimeout bounds the background leaderboard write for one round.
const recordTimeout = 10 * time.Second

// WordPicker supplies a random word per round.
type WordPicker interface {
	Next() (string, error)
}

// ScoreRecorder persists a round winner's time to the all-time leaderboard.
// Called on its own goroutine; it must never block round progression.
type ScoreRecorder interface {
	Record(ctx context.Context, word, name string, elapsedSeconds float64)
}

// EngineConfig holds the round timing knobs.
type EngineConfig struct {
	RoundDuration time.Duration
	Cooldown      time.Duration
}

// DefaultEngineConfig matches the classic game pacing: ten seconds per word,
// two and a half seconds between rounds.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RoundDuration: 10 * time.Second,
		Cooldown:      2500 * time.Millisecond,
	}
}

// roundScore is one player's submission within the live round. The player is
// referenced, never copied, so a point awarded at round end lands on the
// roster entry.
type roundScore struct {
	player         *Player
	elapsedSeconds float64
}

// Engine is the round state machine. It owns the roster and the transient
// round state, and serializes every mutation under one mutex so join, leave,
// score and timer events are processed one at a time.
type Engine struct {
	mu          sync.Mutex
	roster      *Roster
	words       WordPicker
	recorder    ScoreRecorder
	broadcaster Broadcaster
	clock       clockwork.Clock
	cfg         EngineConfig

	state State
	word  string
	// scores is append-only while the round is active, at most one entry per
	// player.
	scores []roundScore

	// generation tags the pending timer with the round instance it belongs
	// to. A fired timer whose generation no longer matches is stale and must
	// become a no-op.
	generation  uint64
	timer       clockwork.Timer
	timerCancel chan struct{}
}

// NewEngine wires the round state machine. Pass clockwork.NewRealClock() in
// production and a FakeClock in tests.
func NewEngine(cfg EngineConfig, words WordPicker, recorder ScoreRecorder, broadcaster Broadcaster, clock clockwork.Clock) *Engine {
	return &Engine{
		roster:      NewRoster(),
		words:       words,
		recorder:    recorder,
		broadcaster: broadcaster,
		clock:       clock,
		cfg:         cfg,
	}
}

// HandleJoin registers a new player, broadcasts the updated roster, and
// starts a round when the roster reaches exactly two players.
func (e *Engine) HandleJoin(name string) *Player {
	e.mu.Lock()
	defer e.mu.Unlock()

	player := e.roster.Add(name)
	log.Info().Str("player", name).Int("roster_size", e.roster.Len()).Msg("player joined")
	e.broadcastPlayerListLocked()

	if e.roster.Len() == 2 {
		e.startLocked()
	}
	return player
}

// HandleLeave removes a player and broadcasts the updated roster. A score the
// player already submitted this round is kept: it still counts for winner
// selection and the leaderboard. The "everyone answered" check is only
// re-evaluated on the next submission, against the then-current roster size.
func (e *Engine) HandleLeave(player *Player) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.roster.Remove(player)
	log.Info().Str("player", player.Name).Int("roster_size", e.roster.Len()).Msg("player left")
	e.broadcastPlayerListLocked()
}

// Score records a player's completion time for the live round. Outside an
// active round, or for a player who already submitted this round, it is a
// no-op. When every current roster player has answered the round ends
// immediately, preempting the deadline timer.
func (e *Engine) Score(player *Player, elapsedSeconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return
	}
	for _, s := range e.scores {
		if s.player == player {
			log.Debug().Str("player", player.Name).Msg("duplicate submission ignored")
			return
		}
	}

	e.scores = append(e.scores, roundScore{player: player, elapsedSeconds: elapsedSeconds})
	log.Info().
		Str("player", player.Name).
		Float64("elapsed_seconds", elapsedSeconds).
		Str("word", e.word).
		Msg("score submitted")

	if len(e.scores) >= e.roster.Len() {
		e.endLocked()
	}
}

// Start begins a round if one can begin. Exposed for external triggers; the
// engine also calls it internally when the roster reaches two players and
// when the cooldown timer fires.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

// StateSnapshot reports the engine's current phase.
func (e *Engine) StateSnapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PlayerList returns the current roster in broadcast order.
func (e *Engine) PlayerList() []Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roster.Snapshot()
}

func (e *Engine) startLocked() {
	if e.state == StateActive {
		return
	}
	if e.roster.Len() <= 1 {
		// Not enough players. Idle until a join re-triggers a start.
		e.stopTimerLocked()
		e.state = StateIdle
		return
	}

	word, err := e.words.Next()
	if err != nil {
		log.Error().Err(err).Msg("no word available, round not started")
		e.stopTimerLocked()
		e.state = StateIdle
		return
	}

	e.word = word
	e.scores = nil
	e.state = StateActive
	e.generation++

	log.Info().Str("word", word).Uint64("round", e.generation).Msg("round started")
	e.broadcastLocked(events.EventTypeRoundStarted, events.RoundStartedPayload{
		Word:         word,
		RoundSeconds: e.cfg.RoundDuration.Seconds(),
	})

	e.armTimerLocked(e.cfg.RoundDuration, e.deadlineExpired)
}

// deadlineExpired runs when the round deadline timer fires. A stale firing
// from a superseded round is detected by generation and ignored.
func (e *Engine) deadlineExpired(generation uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if generation != e.generation || e.state != StateActive {
		log.Debug().Uint64("timer_round", generation).Msg("stale deadline timer ignored")
		return
	}
	log.Info().Str("word", e.word).Msg("round deadline reached")
	e.endLocked()
}

// cooldownExpired runs when the cooldown timer fires and kicks off the next
// round, subject to the usual two-player guard.
func (e *Engine) cooldownExpired(generation uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if generation != e.generation || e.state != StateCooldown {
		log.Debug().Uint64("timer_round", generation).Msg("stale cooldown timer ignored")
		return
	}
	e.startLocked()
}

// endLocked finishes the live round: resolves the winner, awards the point,
// kicks off the leaderboard write, broadcasts the result, and arms the
// cooldown timer. Callers guarantee state == StateActive, which makes a
// second end trigger for the same round a no-op at the call sites.
func (e *Engine) endLocked() {
	e.stopTimerLocked()

	word := e.word
	// Stable sort: ties keep submission order, so the earlier submitter wins.
	sort.SliceStable(e.scores, func(i, j int) bool {
		return e.scores[i].elapsedSeconds < e.scores[j].elapsedSeconds
	})

	if len(e.scores) > 0 {
		winner := e.scores[0]
		e.roster.AddPoint(winner.player)
		log.Info().
			Str("word", word).
			Str("winner", winner.player.Name).
			Float64("elapsed_seconds", winner.elapsedSeconds).
			Msg("round won")

		go func(word, name string, elapsed float64) {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			e.recorder.Record(ctx, word, name, elapsed)
		}(word, winner.player.Name, winner.elapsedSeconds)

		e.broadcastPlayerListLocked()
	} else {
		log.Info().Str("word", word).Msg("round ended with no submissions")
	}

	scores := make([]events.RoundScore, len(e.scores))
	for i, s := range e.scores {
		scores[i] = events.RoundScore{Player: s.player.Name, ElapsedSeconds: s.elapsedSeconds}
	}
	e.broadcastLocked(events.EventTypeRoundEnded, events.RoundEndedPayload{
		Word:   word,
		Scores: scores,
	})

	// Round state is destroyed at end; only the cooldown survives.
	e.word = ""
	e.scores = nil
	e.state = StateCooldown
	e.generation++
	e.armTimerLocked(e.cfg.Cooldown, e.cooldownExpired)
}

// armTimerLocked replaces any pending timer with a one-shot bound to the
// current generation.
func (e *Engine) armTimerLocked(d time.Duration, fired func(generation uint64)) {
	e.stopTimerLocked()

	timer := e.clock.NewTimer(d)
	cancel := make(chan struct{})
	e.timer = timer
	e.timerCancel = cancel
	generation := e.generation

	go func() {
		select {
		case <-timer.Chan():
			fired(generation)
		case <-cancel:
		}
	}()
}

// stopTimerLocked cancels the pending timer, if any. Safe to call when no
// timer is armed; a timer that already fired is neutralized by the
// generation check in its handler.
func (e *Engine) stopTimerLocked() {
	if e.timer == nil {
		return
	}
	close(e.timerCancel)
	e.timerCancel = nil
	if !e.timer.Stop() {
		select {
		case <-e.timer.Chan():
		default:
		}
	}
	e.timer = nil
}

func (e *Engine) broadcastPlayerListLocked() {
	snapshot := e.roster.Snapshot()
	players := make(events.PlayerListPayload, len(snapshot))
	for i, p := range snapshot {
		players[i] = events.PlayerScore{Name: p.Name, Score: p.Score}
	}
	e.broadcastLocked(events.EventTypePlayerList, players)
}

func (e *Engine) broadcastLocked(eventType events.EventType, payload any) {
	event, err := events.New(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to build event")
		return
	}
	e.broadcaster.Broadcast(event)
}
