package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_QueueIsDefensiveCopy(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddToQueue("Alice")

	s := r.Snapshot()
	s.Queue[0].Name = "Tampered"

	assert.Equal(t, "Alice", r.Snapshot().Queue[0].Name)
}

func TestSnapshot_CurrentIsDefensiveCopy(t *testing.T) {
	r, _ := chairRoom(t, "s1")
	r.AddToQueue("Alice")
	require.NoError(t, r.NextParticipant("s1"))

	s := r.Snapshot()
	s.Current.ElapsedMs = 999999

	assert.Equal(t, 0, r.Snapshot().Current.ElapsedMs)
}

func TestSnapshot_PollProjectionStages(t *testing.T) {
	r, _ := chairRoom(t, "s1")

	// Never polled: no projection.
	assert.Nil(t, r.Snapshot().PollState)

	// Active: full view.
	require.NoError(t, r.StartPoll("s1", "Proceed?", PollYesNo, nil, 0))
	view := r.Snapshot().PollState
	require.NotNil(t, view)
	assert.Equal(t, PollStatusActive, view.Status)
	assert.Equal(t, "Proceed?", view.Question)
	assert.Nil(t, view.LastResults)

	// Ended: full view plus frozen results.
	require.True(t, r.CastVote("x", "YES"))
	require.NoError(t, r.EndPoll("s1"))
	view = r.Snapshot().PollState
	require.NotNil(t, view)
	assert.Equal(t, PollStatusEnded, view.Status)
	assert.Equal(t, "Proceed?", view.Question)
	require.NotNil(t, view.LastResults)

	// Closed: status and lastResults only.
	require.NoError(t, r.ClosePoll("s1"))
	view = r.Snapshot().PollState
	require.NotNil(t, view)
	assert.Equal(t, PollStatusClosed, view.Status)
	assert.Empty(t, view.Question)
	assert.Empty(t, view.PollType)
	assert.Nil(t, view.VotesPerParticipant)
	require.NotNil(t, view.LastResults)

	// Cancelled: projection disappears entirely.
	require.NoError(t, r.CancelPoll("s1"))
	assert.Nil(t, r.Snapshot().PollState)
}

func TestSnapshot_SerializesDeterministically(t *testing.T) {
	r, _ := chairRoom(t, "s1")
	r.AddToQueue("Alice")
	r.AddToQueue("Bob")
	require.NoError(t, r.NextParticipant("s1"))
	require.NoError(t, r.StartPoll("s1", "Pick", PollMultiselect, []string{"a", "b", "c"}, 0))
	require.True(t, r.CastVote("x", "OPT_1"))

	first, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)
	second, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSnapshot_WireFieldNames(t *testing.T) {
	r, _ := chairRoom(t, "s1")
	r.AddToQueue("Alice")
	require.NoError(t, r.NextParticipant("s1"))
	require.NoError(t, r.StartPoll("s1", "Proceed?", PollYesNo, nil, 0))

	data, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"queue", "current", "meetingStartSec", "defaultLimitSec",
		"roomCode", "chairOccupied", "pollState", "roomConfig",
	} {
		assert.Contains(t, decoded, key)
	}

	current := decoded["current"].(map[string]any)
	for _, key := range []string{"entry", "startedAtSec", "elapsedMs", "running", "limitSec"} {
		assert.Contains(t, current, key)
	}

	entry := current["entry"].(map[string]any)
	for _, key := range []string{"id", "name", "requestedAt"} {
		assert.Contains(t, entry, key)
	}

	poll := decoded["pollState"].(map[string]any)
	for _, key := range []string{"question", "pollType", "status", "results", "totalVotes"} {
		assert.Contains(t, poll, key)
	}

	config := decoded["roomConfig"].(map[string]any)
	for _, key := range []string{"topic", "meetingGoal", "participationFormat", "decisionRule", "deliverable"} {
		assert.Contains(t, config, key)
	}
}

func TestSnapshot_EmptyRoomMarshalsCleanly(t *testing.T) {
	r, _ := newTestRoom(t)

	data, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"queue":[]`)
	assert.Contains(t, string(data), `"current":null`)
	assert.Contains(t, string(data), `"pollState":null`)
}
