package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversSynchronouslyInSubscriptionOrder(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	var order []string
	bus.Subscribe(func(e Event) { order = append(order, "first:"+string(e.Type)) })
	bus.Subscribe(func(e Event) { order = append(order, "second:"+string(e.Type)) })

	bus.Publish(Event{Type: EventGameStarted})
	bus.Publish(Event{Type: EventTurnChanged})

	assert.Equal(t, []string{
		"first:gameStarted", "second:gameStarted",
		"first:turnChanged", "second:turnChanged",
	}, order)
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	var kept, cancelled int
	bus.Subscribe(func(Event) { kept++ })
	cancel := bus.Subscribe(func(Event) { cancelled++ })

	bus.Publish(Event{Type: EventRoomCreated})
	cancel()
	bus.Publish(Event{Type: EventRoomRemoved})

	assert.Equal(t, 2, kept)
	assert.Equal(t, 1, cancelled)
}

func TestBus_SubscribersGetDetachedSnapshots(t *testing.T) {
	t.Parallel()
	coordinator, store, _ := newTestCoordinator()
	bus := coordinator.bus

	var seen *Room
	bus.Subscribe(func(e Event) {
		if e.Type == EventRoomCreated {
			seen = e.Room
		}
	})

	room := mustCreateRoom(coordinator, defaultCreateParams())
	require.NotNil(t, seen)

	// scribbling on the event payload must not leak into the store
	seen.Name = "defaced"
	seen.Players[0].Score = 1000

	fresh, ok := store.Get(room.ID)
	require.True(t, ok)
	assert.Equal(t, "Sunset Links", fresh.Name)
	assert.Zero(t, fresh.Players[0].Score)
}

// Full happy-path game, checking the catalogue end to end.
func TestEventCatalogue_FullGame(t *testing.T) {
	t.Parallel()
	coordinator, _, recorder := newTestCoordinator()

	room := mustCreateRoom(coordinator, defaultCreateParams())
	roomID := room.ID

	_, ok := coordinator.AddPlayer(roomID, JoinParams{PlayerID: "bob", Name: "Bob"})
	require.True(t, ok)
	_, ok = coordinator.UpdateRoom(roomID, RoomPatch{Name: strPtr("Front Nine")})
	require.True(t, ok)
	_, ok = coordinator.UpdatePlayer(roomID, "bob", PlayerPatch{Name: strPtr("Robert")})
	require.True(t, ok)
	_, ok = coordinator.StartGame(roomID)
	require.True(t, ok)

	for _, playerID := range []string{"alice", "bob"} {
		_, ok = coordinator.RecordScore(roomID, playerID, 3)
		require.True(t, ok)
		_, ok = coordinator.AdvanceTurn(roomID)
		require.True(t, ok)
	}

	_, ok = coordinator.ResetGame(roomID)
	require.True(t, ok)
	deleted, ok := coordinator.RemovePlayer(roomID, "bob")
	require.True(t, ok)
	require.NotNil(t, deleted)
	deleted, ok = coordinator.RemovePlayer(roomID, "alice")
	require.True(t, ok)
	require.Nil(t, deleted)

	assert.Equal(t, []EventType{
		EventRoomCreated,
		EventPlayerJoined,
		EventRoomUpdated,
		EventPlayerUpdated,
		EventGameStarted,
		EventScoreUpdated,
		EventTurnChanged,
		EventScoreUpdated,
		EventTurnChanged,
		EventGameReset,
		EventPlayerLeft,
		EventPlayerLeft,
		EventRoomRemoved,
	}, recorder.types())

	for _, e := range recorder.events {
		assert.Equal(t, roomID, e.RoomID)
		require.NotNil(t, e.Room)
	}
}
