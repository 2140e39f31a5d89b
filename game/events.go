package game

import (
	"sort"
	"sync"
)

type EventType string

const (
	EventRoomCreated   EventType = "roomCreated"
	EventPlayerJoined  EventType = "playerJoined"
	EventPlayerLeft    EventType = "playerLeft"
	EventPlayerUpdated EventType = "playerUpdated"
	EventRoomUpdated   EventType = "roomUpdated"
	EventGameStarted   EventType = "gameStarted"
	EventTurnChanged   EventType = "turnChanged"
	EventScoreUpdated  EventType = "scoreUpdated"
	EventGameCompleted EventType = "gameCompleted"
	EventGameReset     EventType = "gameReset"
	EventRoomRemoved   EventType = "roomRemoved"
)

// Event carries detached snapshots taken after the mutating call committed to
// the store. Subscribers can inspect them freely; writing back changes nothing.
type Event struct {
	Type   EventType `json:"type"`
	RoomID string    `json:"roomId"`
	Room   *Room     `json:"room,omitempty"`
	Player *Player   `json:"player,omitempty"`
}

// Bus fans events out to subscribers synchronously, in subscription order,
// at most once each. There is no replay and no persistence; a subscriber that
// needs durability has to write things down itself.
type Bus struct {
	locker sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a cancel func that removes it again.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.locker.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.locker.Unlock()

	return func() {
		b.locker.Lock()
		delete(b.subs, id)
		b.locker.Unlock()
	}
}

func (b *Bus) Publish(e Event) {
	b.locker.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.locker.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
