package game

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// eventRecorder captures bus traffic for assertions.
type eventRecorder struct {
	locker sync.Mutex
	events []Event
}

func (rec *eventRecorder) record(e Event) {
	rec.locker.Lock()
	rec.events = append(rec.events, e)
	rec.locker.Unlock()
}

func (rec *eventRecorder) types() []EventType {
	rec.locker.Lock()
	defer rec.locker.Unlock()

	types := make([]EventType, 0, len(rec.events))
	for _, e := range rec.events {
		types = append(types, e.Type)
	}
	return types
}

func (rec *eventRecorder) last() (Event, bool) {
	rec.locker.Lock()
	defer rec.locker.Unlock()

	if len(rec.events) == 0 {
		return Event{}, false
	}
	return rec.events[len(rec.events)-1], true
}

func (rec *eventRecorder) reset() {
	rec.locker.Lock()
	rec.events = nil
	rec.locker.Unlock()
}

func newTestCoordinator() (*Coordinator, *Store, *eventRecorder) {
	store := NewStore()
	bus := NewBus()
	coordinator := NewCoordinator(store, bus, zerolog.Nop())
	recorder := &eventRecorder{}
	bus.Subscribe(recorder.record)
	return coordinator, store, recorder
}

func mustCreateRoom(coordinator *Coordinator, params CreateRoomParams) Room {
	room, err := coordinator.CreateRoom(params)
	if err != nil {
		panic(err)
	}
	return room
}

func defaultCreateParams() CreateRoomParams {
	return CreateRoomParams{
		HostID:        "alice",
		HostName:      "Alice",
		WalletAddress: "0xa11ce",
		RoomName:      "Sunset Links",
		RewardAmount:  decimal.NewFromInt(10),
	}
}

// seatPlayers creates a room and joins the extra players, returning the room id.
func seatPlayers(coordinator *Coordinator, shotsPerPlayer int, playerIDs ...string) string {
	params := defaultCreateParams()
	params.ShotsPerPlayer = shotsPerPlayer
	params.MaxPlayers = len(playerIDs) + 1
	if params.MaxPlayers < 2 {
		params.MaxPlayers = 2
	}
	room := mustCreateRoom(coordinator, params)
	for _, id := range playerIDs {
		coordinator.AddPlayer(room.ID, JoinParams{PlayerID: id, Name: id})
	}
	return room.ID
}
