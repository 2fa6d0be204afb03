package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSortedDescending(t *testing.T, snapshot []Player) {
	t.Helper()
	for i := 1; i < len(snapshot); i++ {
		assert.GreaterOrEqual(t, snapshot[i-1].Score, snapshot[i].Score,
			"roster must be sorted descending by score")
	}
}

func TestRosterAddStartsAtZero(t *testing.T) {
	r := NewRoster()

	p := r.Add("Ann")

	require.NotNil(t, p)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, 0, p.Score)
	assert.Equal(t, 1, r.Len())
}

func TestRosterAddAllowsDuplicateNames(t *testing.T) {
	r := NewRoster()

	first := r.Add("Ann")
	second := r.Add("Ann")

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, r.Len())
}

func TestRosterRemove(t *testing.T) {
	r := NewRoster()
	ann := r.Add("Ann")
	bo := r.Add("Bo")

	r.Remove(ann)

	require.Equal(t, 1, r.Len())
	assert.Equal(t, "Bo", r.Snapshot()[0].Name)

	// Removing a player that is gone already is a no-op.
	r.Remove(ann)
	assert.Equal(t, 1, r.Len())

	r.Remove(bo)
	assert.Equal(t, 0, r.Len())
}

func TestRosterSortedDescendingAfterEveryAddPoint(t *testing.T) {
	r := NewRoster()
	ann := r.Add("Ann")
	bo := r.Add("Bo")
	cat := r.Add("Cat")

	for _, p := range []*Player{bo, cat, cat, ann, cat, bo, ann} {
		r.AddPoint(p)
		assertSortedDescending(t, r.Snapshot())
	}

	snapshot := r.Snapshot()
	assert.Equal(t, "Cat", snapshot[0].Name)
	assert.Equal(t, 3, snapshot[0].Score)
}

func TestRosterAddPointKeepsTieOrderStable(t *testing.T) {
	r := NewRoster()
	ann := r.Add("Ann")
	bo := r.Add("Bo")
	r.Add("Cat")

	r.AddPoint(ann)
	r.AddPoint(bo)

	// Ann and Bo are tied on 1; Ann was already ahead of Bo, so she stays
	// ahead. Cat stays last on 0.
	snapshot := r.Snapshot()
	assert.Equal(t, []string{"Ann", "Bo", "Cat"}, []string{snapshot[0].Name, snapshot[1].Name, snapshot[2].Name})
}
