package game

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	t.Parallel()
	coordinator, store, recorder := newTestCoordinator()

	room, err := coordinator.CreateRoom(defaultCreateParams())
	require.NoError(t, err)

	assert.Len(t, room.ID, roomCodeLength)
	assert.Equal(t, "Sunset Links", room.Name)
	assert.Equal(t, "alice", room.HostID)
	assert.Equal(t, StatusWaiting, room.Status)
	assert.Equal(t, defaultMaxPlayers, room.MaxPlayers)
	assert.Equal(t, defaultShotsPerPlayer, room.ShotsPerPlayer)
	assert.True(t, room.RewardAmount.Equal(decimal.NewFromInt(10)))

	require.Len(t, room.Players, 1)
	host := room.Players[0]
	assert.Equal(t, "alice", host.ID)
	assert.Equal(t, "0xa11ce", host.WalletAddress)
	assert.Equal(t, defaultShotsPerPlayer, host.ShotsRemaining)
	assert.True(t, host.IsConnected)
	assert.True(t, host.IsCurrentTurn)
	assert.Zero(t, host.Score)

	stored, ok := store.Get(room.ID)
	require.True(t, ok)
	assert.Equal(t, room.ID, stored.ID)

	assert.Equal(t, []EventType{EventRoomCreated}, recorder.types())
}

func TestCreateRoom_Validation(t *testing.T) {
	t.Parallel()
	coordinator, _, _ := newTestCoordinator()

	testCases := []struct {
		name           string
		maxPlayers     int
		shotsPerPlayer int
		expectedErr    error
	}{
		{name: "maxPlayers below two", maxPlayers: 1, shotsPerPlayer: 3, expectedErr: ErrInvalidMaxPlayers},
		{name: "negative maxPlayers", maxPlayers: -4, shotsPerPlayer: 3, expectedErr: ErrInvalidMaxPlayers},
		{name: "shotsPerPlayer below one", maxPlayers: 4, shotsPerPlayer: -1, expectedErr: ErrInvalidShotCount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := defaultCreateParams()
			params.MaxPlayers = tc.maxPlayers
			params.ShotsPerPlayer = tc.shotsPerPlayer

			_, err := coordinator.CreateRoom(params)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestCreateRoom_UniqueIds(t *testing.T) {
	t.Parallel()
	coordinator, _, _ := newTestCoordinator()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		room := mustCreateRoom(coordinator, defaultCreateParams())
		_, dup := seen[room.ID]
		require.False(t, dup, "room id %q issued twice", room.ID)
		seen[room.ID] = struct{}{}
	}
}

func TestAddPlayer(t *testing.T) {
	t.Parallel()
	coordinator, _, recorder := newTestCoordinator()
	room := mustCreateRoom(coordinator, defaultCreateParams())

	updated, ok := coordinator.AddPlayer(room.ID, JoinParams{PlayerID: "bob", Name: "Bob", WalletAddress: "0xb0b"})
	require.True(t, ok)
	require.Len(t, updated.Players, 2)

	bob := updated.Players[1]
	assert.Equal(t, "bob", bob.ID)
	assert.Equal(t, defaultShotsPerPlayer, bob.ShotsRemaining)
	assert.Zero(t, bob.Score)
	assert.True(t, bob.IsConnected)
	assert.False(t, bob.IsCurrentTurn)

	assert.Equal(t, []EventType{EventRoomCreated, EventPlayerJoined}, recorder.types())
}

func TestAddPlayer_Rejections(t *testing.T) {
	t.Parallel()
	coordinator, _, _ := newTestCoordinator()

	t.Run("unknown room", func(t *testing.T) {
		_, ok := coordinator.AddPlayer("ZZZZZZ", JoinParams{PlayerID: "bob"})
		assert.False(t, ok)
	})

	t.Run("room full", func(t *testing.T) {
		params := defaultCreateParams()
		params.MaxPlayers = 2
		room := mustCreateRoom(coordinator, params)

		_, ok := coordinator.AddPlayer(room.ID, JoinParams{PlayerID: "bob"})
		require.True(t, ok)
		_, ok = coordinator.AddPlayer(room.ID, JoinParams{PlayerID: "carol"})
		assert.False(t, ok)
	})

	t.Run("room not waiting", func(t *testing.T) {
		roomID := seatPlayers(coordinator, 3, "bob")
		_, ok := coordinator.StartGame(roomID)
		require.True(t, ok)

		_, ok = coordinator.AddPlayer(roomID, JoinParams{PlayerID: "carol"})
		assert.False(t, ok)
	})
}

func TestAddPlayer_RejoinResetsProgress(t *testing.T) {
	t.Parallel()
	coordinator, _, _ := newTestCoordinator()
	room := mustCreateRoom(coordinator, defaultCreateParams())

	_, ok := coordinator.AddPlayer(room.ID, JoinParams{PlayerID: "bob", Name: "Bob"})
	require.True(t, ok)

	// give bob some progress by hand, then rejoin
	patched, ok := coordinator.UpdatePlayer(room.ID, "bob", PlayerPatch{
		Score:          intPtr(42),
		ShotsRemaining: intPtr(1),
		IsConnected:    boolPtr(false),
	})
	require.True(t, ok)
	require.Equal(t, 42, patched.Players[1].Score)

	rejoined, ok := coordinator.AddPlayer(room.ID, JoinParams{PlayerID: "bob", Name: "Bobby", WalletAddress: "0xb0b2"})
	require.True(t, ok)
	require.Len(t, rejoined.Players, 2, "rejoin replaces in place, no duplicate entry")

	bob := rejoined.Players[1]
	assert.Equal(t, "Bobby", bob.Name)
	assert.Equal(t, "0xb0b2", bob.WalletAddress)
	assert.Zero(t, bob.Score, "rejoin is a fresh start")
	assert.Equal(t, defaultShotsPerPlayer, bob.ShotsRemaining)
	assert.True(t, bob.IsConnected)
}

func TestRemovePlayer_WaitingRoomSplicesAndReassignsHost(t *testing.T) {
	t.Parallel()
	coordinator, _, recorder := newTestCoordinator()
	room := mustCreateRoom(coordinator, defaultCreateParams())
	_, ok := coordinator.AddPlayer(room.ID, JoinParams{PlayerID: "paula", Name: "Paula"})
	require.True(t, ok)

	updated, ok := coordinator.RemovePlayer(room.ID, "alice")
	require.True(t, ok)
	require.NotNil(t, updated)

	assert.Equal(t, "paula", updated.HostID)
	require.Len(t, updated.Players, 1)
	assert.Equal(t, "paula", updated.Players[0].ID)

	assert.Contains(t, recorder.types(), EventPlayerLeft)
	assert.NotContains(t, recorder.types(), EventRoomRemoved)
}

func TestRemovePlayer_LastPlayerDeletesRoom(t *testing.T) {
	t.Parallel()
	coordinator, store, recorder := newTestCoordinator()
	room := mustCreateRoom(coordinator, defaultCreateParams())

	deleted, ok := coordinator.RemovePlayer(room.ID, "alice")
	require.True(t, ok)
	assert.Nil(t, deleted)

	_, ok = store.Get(room.ID)
	assert.False(t, ok)

	assert.Equal(t, []EventType{EventRoomCreated, EventPlayerLeft, EventRoomRemoved}, recorder.types())
}

func TestRemovePlayer_DuringGameMarksDisconnected(t *testing.T) {
	t.Parallel()
	coordinator, _, recorder := newTestCoordinator()
	roomID := seatPlayers(coordinator, 3, "bob", "carol")
	_, ok := coordinator.StartGame(roomID)
	require.True(t, ok)
	recorder.reset()

	// bob is not on turn: no advance should happen
	updated, ok := coordinator.RemovePlayer(roomID, "bob")
	require.True(t, ok)
	require.NotNil(t, updated)

	require.Len(t, updated.Players, 3, "players are kept during play to preserve turn order")
	assert.False(t, updated.Players[1].IsConnected)
	assert.True(t, updated.Players[0].IsCurrentTurn, "turn unchanged when a bystander leaves")
	assert.Equal(t, []EventType{EventPlayerLeft}, recorder.types())
}

func TestRemovePlayer_CurrentPlayerLeavingAdvancesTurn(t *testing.T) {
	t.Parallel()
	coordinator, _, recorder := newTestCoordinator()
	roomID := seatPlayers(coordinator, 3, "bob", "carol")
	_, ok := coordinator.StartGame(roomID)
	require.True(t, ok)
	recorder.reset()

	updated, ok := coordinator.RemovePlayer(roomID, "alice")
	require.True(t, ok)
	require.NotNil(t, updated)

	assert.False(t, updated.Players[0].IsConnected)
	assert.True(t, updated.Players[1].IsCurrentTurn)
	assert.Equal(t, 1, updated.CurrentPlayerIndex)
	assert.Equal(t, "bob", updated.HostID, "host moves to the first connected player")
	assert.Equal(t, []EventType{EventPlayerLeft, EventTurnChanged}, recorder.types())
}

func TestRemovePlayer_AllDisconnectedDeletesRoom(t *testing.T) {
	t.Parallel()
	coordinator, store, recorder := newTestCoordinator()
	roomID := seatPlayers(coordinator, 3, "bob")
	_, ok := coordinator.StartGame(roomID)
	require.True(t, ok)
	recorder.reset()

	updated, ok := coordinator.RemovePlayer(roomID, "bob")
	require.True(t, ok)
	require.NotNil(t, updated)

	deleted, ok := coordinator.RemovePlayer(roomID, "alice")
	require.True(t, ok)
	assert.Nil(t, deleted)

	_, ok = store.Get(roomID)
	assert.False(t, ok)
	assert.Equal(t, []EventType{EventPlayerLeft, EventPlayerLeft, EventRoomRemoved}, recorder.types())
}

func TestRemovePlayer_Rejections(t *testing.T) {
	t.Parallel()
	coordinator, _, _ := newTestCoordinator()
	room := mustCreateRoom(coordinator, defaultCreateParams())

	_, ok := coordinator.RemovePlayer("ZZZZZZ", "alice")
	assert.False(t, ok)

	_, ok = coordinator.RemovePlayer(room.ID, "ghost")
	assert.False(t, ok)
}

func TestUpdateRoom(t *testing.T) {
	t.Parallel()
	coordinator, _, recorder := newTestCoordinator()
	room := mustCreateRoom(coordinator, defaultCreateParams())
	recorder.reset()

	reward := decimal.RequireFromString("2.5")
	updated, ok := coordinator.UpdateRoom(room.ID, RoomPatch{
		Name:         strPtr("Back Nine"),
		MaxPlayers:   intPtr(6),
		RewardAmount: &reward,
	})
	require.True(t, ok)
	assert.Equal(t, "Back Nine", updated.Name)
	assert.Equal(t, 6, updated.MaxPlayers)
	assert.True(t, updated.RewardAmount.Equal(reward))
	assert.Equal(t, []EventType{EventRoomUpdated}, recorder.types())

	_, ok = coordinator.UpdateRoom(room.ID, RoomPatch{MaxPlayers: intPtr(1)})
	assert.False(t, ok, "cannot shrink below two seats")
}

func TestCleanupInactiveRooms(t *testing.T) {
	t.Parallel()
	coordinator, store, recorder := newTestCoordinator()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	stale := mustCreateRoom(coordinator, defaultCreateParams())
	staleCompleted := mustCreateRoom(coordinator, defaultCreateParams())
	_, ok := coordinator.AddPlayer(staleCompleted.ID, JoinParams{PlayerID: "bob"})
	require.True(t, ok)

	store.now = func() time.Time { return base.Add(25 * time.Hour) }
	fresh := mustCreateRoom(coordinator, defaultCreateParams())
	recorder.reset()

	removed := coordinator.CleanupInactiveRooms(base.Add(25 * time.Hour))
	assert.Equal(t, 2, removed)

	_, ok = store.Get(stale.ID)
	assert.False(t, ok)
	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)

	assert.Equal(t, []EventType{EventRoomRemoved, EventRoomRemoved}, recorder.types())
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
