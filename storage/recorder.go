package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tekvyy/keyless-golf/game"
)

const recordTimeout = 5 * time.Second

// MatchInserter is what the recorder needs from the repo.
type MatchInserter interface {
	InsertMatchResult(ctx context.Context, result MatchResult) (string, error)
}

// Recorder subscribes to the room bus and persists the final standings of
// every completed game. It runs off the publisher's goroutine so a slow
// database never stalls coordinator operations.
type Recorder struct {
	repo MatchInserter
	log  zerolog.Logger
}

func NewRecorder(repo MatchInserter, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Attach subscribes the recorder to the bus and returns the cancel func.
func (rec *Recorder) Attach(bus *game.Bus) func() {
	return bus.Subscribe(rec.HandleEvent)
}

func (rec *Recorder) HandleEvent(event game.Event) {
	if event.Type != game.EventGameCompleted || event.Room == nil {
		return
	}

	result := resultFromRoom(*event.Room)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		id, err := rec.repo.InsertMatchResult(ctx, result)
		if err != nil {
			rec.log.Error().Err(err).Str("room", result.RoomID).Msg("failed to record match result")
			return
		}
		rec.log.Info().Str("room", result.RoomID).Str("match", id).Msg("match result recorded")
	}()
}

func resultFromRoom(room game.Room) MatchResult {
	result := MatchResult{
		RoomID:       room.ID,
		RoomName:     room.Name,
		RewardAmount: room.RewardAmount,
		Scores:       make(map[string]int, len(room.Players)),
		CompletedAt:  time.Now(),
	}
	for _, player := range room.Players {
		result.Scores[player.ID] = player.Score
	}
	if winner := game.WinnerOf(room); winner != nil {
		result.WinnerID = winner.ID
		result.WinnerName = winner.Name
		result.WalletAddress = winner.WalletAddress
	}
	return result
}
