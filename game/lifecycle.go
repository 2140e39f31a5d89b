package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultMaxPlayers     = 4
	defaultShotsPerPlayer = 3

	// DefaultSweepInterval is how often the background sweep scans for rooms
	// past the inactivity TTL.
	DefaultSweepInterval = time.Hour
)

// Coordinator owns room lifecycle and the per-room turn machine. All state
// lives in the store; the coordinator itself is stateless and safe for
// concurrent use.
type Coordinator struct {
	store *Store
	bus   *Bus
	log   zerolog.Logger
}

func NewCoordinator(store *Store, bus *Bus, log zerolog.Logger) *Coordinator {
	return &Coordinator{store: store, bus: bus, log: log}
}

// GetRoom returns a snapshot of one room. Reading counts as activity.
func (c *Coordinator) GetRoom(roomID string) (Room, bool) {
	return c.store.Get(roomID)
}

// ListRooms returns the active rooms, newest first.
func (c *Coordinator) ListRooms() []Room {
	return c.store.ListActive(c.store.now())
}

type CreateRoomParams struct {
	HostID         string          `json:"hostId"`
	HostName       string          `json:"hostName"`
	WalletAddress  string          `json:"walletAddress"`
	RoomName       string          `json:"roomName"`
	MaxPlayers     int             `json:"maxPlayers"`
	ShotsPerPlayer int             `json:"shotsPerPlayer"`
	RewardAmount   decimal.Decimal `json:"rewardAmount"`
}

type JoinParams struct {
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress"`
}

// PlayerPatch is the direct-replace update used by the façade PUT. It bypasses
// turn and scoring rules on purpose; isCurrentTurn stays engine-owned.
type PlayerPatch struct {
	Name           *string `json:"name"`
	WalletAddress  *string `json:"walletAddress"`
	Score          *int    `json:"score"`
	ShotsRemaining *int    `json:"shotsRemaining"`
	IsConnected    *bool   `json:"isConnected"`
}

type RoomPatch struct {
	Name         *string          `json:"name"`
	MaxPlayers   *int             `json:"maxPlayers"`
	RewardAmount *decimal.Decimal `json:"rewardAmount"`
}

// CreateRoom builds a room with the host as its single player and the turn.
// Zero-valued numeric params fall back to defaults; explicit bad values are
// rejected.
func (c *Coordinator) CreateRoom(params CreateRoomParams) (Room, error) {
	if params.MaxPlayers == 0 {
		params.MaxPlayers = defaultMaxPlayers
	}
	if params.ShotsPerPlayer == 0 {
		params.ShotsPerPlayer = defaultShotsPerPlayer
	}
	if params.MaxPlayers < 2 {
		return Room{}, ErrInvalidMaxPlayers
	}
	if params.ShotsPerPlayer < 1 {
		return Room{}, ErrInvalidShotCount
	}

	now := c.store.now()
	room := Room{
		Name:   params.RoomName,
		HostID: params.HostID,
		Status: StatusWaiting,
		Players: []Player{{
			ID:             params.HostID,
			Name:           params.HostName,
			WalletAddress:  params.WalletAddress,
			ShotsRemaining: params.ShotsPerPlayer,
			IsConnected:    true,
			IsCurrentTurn:  true,
		}},
		MaxPlayers:     params.MaxPlayers,
		ShotsPerPlayer: params.ShotsPerPlayer,
		RewardAmount:   params.RewardAmount,
		Created:        now,
		LastActivity:   now,
	}

	// insert is atomic with the collision check, so a concurrent create
	// drawing the same code just forces another attempt.
	for attempt := 0; ; attempt++ {
		if attempt < roomCodeAttempts {
			room.ID = newRoomCode()
		} else {
			room.ID = uuid.NewString()
		}
		if c.store.insert(room) {
			break
		}
	}

	c.publish(EventRoomCreated, &room, nil)
	c.log.Info().Str("room", room.ID).Str("host", room.HostID).Msg("room created")
	return room, nil
}

// AddPlayer admits a player into a waiting, non-full room. A returning player
// id is replaced in place: shots refilled, score dropped. Rejoining is a fresh
// start, not a resume.
func (c *Coordinator) AddPlayer(roomID string, join JoinParams) (Room, bool) {
	var joined Player
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		if r.Status != StatusWaiting {
			return abortMutation
		}
		if i := r.findPlayer(join.PlayerID); i >= 0 {
			r.Players[i] = Player{
				ID:             join.PlayerID,
				Name:           join.Name,
				WalletAddress:  join.WalletAddress,
				ShotsRemaining: r.ShotsPerPlayer,
				IsConnected:    true,
				IsCurrentTurn:  r.Players[i].IsCurrentTurn,
			}
			joined = r.Players[i]
			return commitMutation
		}
		if len(r.Players) >= r.MaxPlayers {
			return abortMutation
		}
		player := Player{
			ID:             join.PlayerID,
			Name:           join.Name,
			WalletAddress:  join.WalletAddress,
			ShotsRemaining: r.ShotsPerPlayer,
			IsConnected:    true,
		}
		r.Players = append(r.Players, player)
		joined = player
		return commitMutation
	})
	if !ok {
		return Room{}, false
	}

	c.publish(EventPlayerJoined, &room, &joined)
	return room, true
}

// RemovePlayer evicts a player. Mid-game the player is only marked
// disconnected so turn order stays intact; otherwise the entry is spliced out.
// A room left without connected players is deleted, in which case the returned
// room is nil.
func (c *Coordinator) RemovePlayer(roomID, playerID string) (*Room, bool) {
	var (
		removed   Player
		deleted   bool
		turnEvent EventType
	)
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		i := r.findPlayer(playerID)
		if i < 0 {
			return abortMutation
		}
		removed = r.Players[i]

		hadTurn := r.Players[i].IsCurrentTurn
		if r.Status == StatusPlaying {
			r.Players[i].IsConnected = false
		} else {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			if r.CurrentPlayerIndex >= len(r.Players) {
				r.CurrentPlayerIndex = 0
			}
		}

		if !r.anyConnected() {
			deleted = true
			return commitAndDelete
		}

		if r.HostID == playerID {
			for j := range r.Players {
				if r.Players[j].IsConnected {
					r.HostID = r.Players[j].ID
					break
				}
			}
		}

		// The departing player held the turn: hand it over inside the same
		// mutation so no request ever observes a disconnected current player.
		if r.Status == StatusPlaying && hadTurn {
			turnEvent = advanceRoomTurn(r)
		}
		return commitMutation
	})
	if !ok {
		return nil, false
	}

	c.publish(EventPlayerLeft, &room, &removed)
	if deleted {
		c.publish(EventRoomRemoved, &room, nil)
		c.log.Info().Str("room", room.ID).Msg("room removed, no connected players left")
		return nil, true
	}
	c.publishTurnOutcome(turnEvent, &room)
	return &room, true
}

// UpdatePlayer applies a direct field patch, façade-trusted.
func (c *Coordinator) UpdatePlayer(roomID, playerID string, patch PlayerPatch) (Room, bool) {
	var updated Player
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		i := r.findPlayer(playerID)
		if i < 0 {
			return abortMutation
		}
		p := &r.Players[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.WalletAddress != nil {
			p.WalletAddress = *patch.WalletAddress
		}
		if patch.Score != nil {
			p.Score = *patch.Score
		}
		if patch.ShotsRemaining != nil && *patch.ShotsRemaining >= 0 {
			p.ShotsRemaining = *patch.ShotsRemaining
		}
		if patch.IsConnected != nil {
			p.IsConnected = *patch.IsConnected
		}
		updated = *p
		return commitMutation
	})
	if !ok {
		return Room{}, false
	}

	c.publish(EventPlayerUpdated, &room, &updated)
	return room, true
}

// UpdateRoom applies a partial update to room-level fields.
func (c *Coordinator) UpdateRoom(roomID string, patch RoomPatch) (Room, bool) {
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		if patch.MaxPlayers != nil && *patch.MaxPlayers < 2 {
			return abortMutation
		}
		if patch.Name != nil {
			r.Name = *patch.Name
		}
		if patch.MaxPlayers != nil {
			r.MaxPlayers = *patch.MaxPlayers
		}
		if patch.RewardAmount != nil {
			r.RewardAmount = *patch.RewardAmount
		}
		return commitMutation
	})
	if !ok {
		return Room{}, false
	}

	c.publish(EventRoomUpdated, &room, nil)
	return room, true
}

// CleanupInactiveRooms deletes every room past the 24h inactivity TTL,
// regardless of status, and returns how many were removed.
func (c *Coordinator) CleanupInactiveRooms(now time.Time) int {
	expired := c.store.expire(now)
	for i := range expired {
		c.publish(EventRoomRemoved, &expired[i], nil)
		c.log.Info().Str("room", expired[i].ID).Time("lastActivity", expired[i].LastActivity).Msg("room expired")
	}
	return len(expired)
}

// RunSweeper runs the eviction sweep until ctx is cancelled.
func (c *Coordinator) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := c.CleanupInactiveRooms(now); n > 0 {
				c.log.Info().Int("removed", n).Msg("eviction sweep")
			}
		}
	}
}

func (c *Coordinator) publish(eventType EventType, room *Room, player *Player) {
	event := Event{Type: eventType}
	if room != nil {
		snapshot := room.clone()
		event.Room = &snapshot
		event.RoomID = room.ID
	}
	if player != nil {
		p := *player
		event.Player = &p
	}
	c.bus.Publish(event)
}

// publishTurnOutcome emits the event produced by an in-mutation turn advance.
func (c *Coordinator) publishTurnOutcome(eventType EventType, room *Room) {
	switch eventType {
	case EventTurnChanged:
		current := room.Players[room.CurrentPlayerIndex]
		c.publish(EventTurnChanged, room, &current)
	case EventGameCompleted:
		c.publish(EventGameCompleted, room, nil)
	}
}
