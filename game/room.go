package game

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusPlaying   Status = "playing"
	StatusCompleted Status = "completed"
)

// Player is one member of a room. The slice position inside Room.Players is the
// turn order and must be preserved across mutations.
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	WalletAddress  string `json:"walletAddress"`
	Score          int    `json:"score"`
	ShotsRemaining int    `json:"shotsRemaining"`
	IsConnected    bool   `json:"isConnected"`
	IsCurrentTurn  bool   `json:"isCurrentTurn"`
}

type Room struct {
	// Identity / metadata
	ID     string `json:"id"`
	Name   string `json:"name"`
	HostID string `json:"hostId"`
	Status Status `json:"status"`

	// Configuration, fixed at creation except via UpdateRoom
	MaxPlayers     int             `json:"maxPlayers"`
	ShotsPerPlayer int             `json:"shotsPerPlayer"`
	RewardAmount   decimal.Decimal `json:"rewardAmount"`

	// Runtime state
	Players            []Player  `json:"players"`
	CurrentPlayerIndex int       `json:"currentPlayerIndex"`
	Created            time.Time `json:"created"`
	LastActivity       time.Time `json:"lastActivity"`
}

// clone returns a detached snapshot safe to hand to callers and subscribers.
func (r *Room) clone() Room {
	c := *r
	c.Players = make([]Player, len(r.Players))
	copy(c.Players, r.Players)
	return c
}

// findPlayer returns the index of the player with the given id, or -1.
func (r *Room) findPlayer(id string) int {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) anyConnected() bool {
	for i := range r.Players {
		if r.Players[i].IsConnected {
			return true
		}
	}
	return false
}
