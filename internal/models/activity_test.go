package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivity_SnapshotIsIndependent(t *testing.T) {
	a := &Activity{Name: "Chess Club", MaxParticipants: 12, Participants: []string{"a@x.edu"}}
	snap := a.Snapshot()
	snap.Participants[0] = "mutated"
	assert.Equal(t, "a@x.edu", a.Participants[0])
}

func TestActivity_WithoutParticipantKeepsOrder(t *testing.T) {
	a := &Activity{Participants: []string{"a", "b", "c"}}

	next, ok := a.WithoutParticipant("b")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, next)
	assert.Equal(t, []string{"a", "b", "c"}, a.Participants)

	_, ok = a.WithoutParticipant("z")
	assert.False(t, ok)
}

func TestActivity_WithParticipantDoesNotAlias(t *testing.T) {
	a := &Activity{Participants: make([]string, 1, 8)}
	a.Participants[0] = "a"

	first := a.WithParticipant("b")
	second := a.WithParticipant("c")
	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "c"}, second)
}
