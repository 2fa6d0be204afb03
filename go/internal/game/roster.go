package game

import "sort"

// Player is a connected participant. The same pointer identifies the player
// for its whole session; the engine and the gateway hold references, never
// copies.
type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Roster is the ordered list of joined players and their cumulative scores,
// sorted descending by score. It is not safe for concurrent use on its own;
// the owning Engine serializes all access.
type Roster struct {
	players []*Player
}

func NewRoster() *Roster {
	return &Roster{}
}

// Add appends a new player with a zero score. Names are not required to be
// unique.
func (r *Roster) Add(name string) *Player {
	p := &Player{Name: name}
	r.players = append(r.players, p)
	return p
}

// Remove drops every entry matching the given player pointer. Removing a
// player that is not on the roster is a no-op.
func (r *Roster) Remove(player *Player) {
	kept := r.players[:0]
	for _, p := range r.players {
		if p != player {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(r.players); i++ {
		r.players[i] = nil
	}
	r.players = kept
}

// AddPoint increments the player's score and re-sorts the roster descending
// by score. The sort is stable, so players with equal scores keep their
// relative order.
func (r *Roster) AddPoint(player *Player) {
	player.Score++
	sort.SliceStable(r.players, func(i, j int) bool {
		return r.players[i].Score > r.players[j].Score
	})
}

// Len returns the number of joined players.
func (r *Roster) Len() int {
	return len(r.players)
}

// Snapshot returns a value copy of the roster in its current order, suitable
// for serialization outside the engine lock.
func (r *Roster) Snapshot() []Player {
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}
