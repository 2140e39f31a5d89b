package game

import (
	"sort"
	"sync"
	"time"
)

// roomTTL is how long a room may sit without activity before the sweep (or
// ListActive filtering) considers it dead.
const roomTTL = 24 * time.Hour

type mutateOutcome int

const (
	abortMutation mutateOutcome = iota
	commitMutation
	commitAndDelete
)

// Store is the single source of truth for rooms. Every read-modify-write in the
// package runs whole inside mutate so concurrent requests against the same room
// cannot interleave between the read and the write half of an operation.
type Store struct {
	locker sync.Mutex
	rooms  map[string]*Room
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
		now:   time.Now,
	}
}

// Get returns a snapshot of the room and refreshes its lastActivity. Absence is
// a valid outcome, not an error.
func (s *Store) Get(roomID string) (Room, bool) {
	s.locker.Lock()
	defer s.locker.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	room.LastActivity = s.now()
	return room.clone(), true
}

// Put upserts with full-replace semantics. Merging partial states from
// concurrent callers is exactly the lost-update bug this store exists to avoid.
func (s *Store) Put(room Room) {
	s.locker.Lock()
	defer s.locker.Unlock()

	stored := room.clone()
	s.rooms[room.ID] = &stored
}

// insert stores the room only if its id is free. Used by room creation to make
// id collision checking and the write a single atomic step.
func (s *Store) insert(room Room) bool {
	s.locker.Lock()
	defer s.locker.Unlock()

	if _, taken := s.rooms[room.ID]; taken {
		return false
	}
	stored := room.clone()
	s.rooms[room.ID] = &stored
	return true
}

// Delete is idempotent.
func (s *Store) Delete(roomID string) {
	s.locker.Lock()
	defer s.locker.Unlock()

	delete(s.rooms, roomID)
}

// ListActive returns waiting rooms plus playing/completed rooms seen within the
// TTL, newest created first.
func (s *Store) ListActive(now time.Time) []Room {
	s.locker.Lock()
	defer s.locker.Unlock()

	active := make([]Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		if room.Status == StatusWaiting || now.Sub(room.LastActivity) < roomTTL {
			active = append(active, room.clone())
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Created.After(active[j].Created)
	})
	return active
}

// mutate runs fn on the live room under the store lock. fn mutates the room in
// place and decides whether to commit, abort, or commit and drop the room from
// the table. The returned snapshot reflects the committed state.
func (s *Store) mutate(roomID string, fn func(*Room) mutateOutcome) (Room, bool) {
	s.locker.Lock()
	defer s.locker.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return Room{}, false
	}

	switch fn(room) {
	case commitMutation:
		room.LastActivity = s.now()
		return room.clone(), true
	case commitAndDelete:
		room.LastActivity = s.now()
		delete(s.rooms, roomID)
		return room.clone(), true
	default:
		return Room{}, false
	}
}

// expire removes every room inactive past the TTL and returns their final
// snapshots. Runs entirely under the store lock so the sweep can never delete a
// room mid-mutation.
func (s *Store) expire(now time.Time) []Room {
	s.locker.Lock()
	defer s.locker.Unlock()

	var expired []Room
	for id, room := range s.rooms {
		if now.Sub(room.LastActivity) > roomTTL {
			expired = append(expired, room.clone())
			delete(s.rooms, id)
		}
	}
	return expired
}

func (s *Store) len() int {
	s.locker.Lock()
	defer s.locker.Unlock()

	return len(s.rooms)
}
