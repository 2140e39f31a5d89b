package game

// StartGame moves a waiting room into play. Requires at least two players;
// index 0 opens the game.
func (c *Coordinator) StartGame(roomID string) (Room, bool) {
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		if len(r.Players) < 2 {
			return abortMutation
		}
		r.Status = StatusPlaying
		r.CurrentPlayerIndex = 0
		for i := range r.Players {
			r.Players[i].IsCurrentTurn = i == 0
		}
		return commitMutation
	})
	if !ok {
		return Room{}, false
	}

	c.publish(EventGameStarted, &room, nil)
	return room, true
}

// RecordScore adds a shot result for the player currently holding the turn.
// Out-of-turn submissions are rejected outright, never queued. Recording does
// not advance the turn; callers follow up with AdvanceTurn.
func (c *Coordinator) RecordScore(roomID, playerID string, score int) (Room, bool) {
	var scorer Player
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		i := r.findPlayer(playerID)
		if i < 0 || !r.Players[i].IsCurrentTurn {
			return abortMutation
		}
		r.Players[i].Score += score
		if r.Players[i].ShotsRemaining > 0 {
			r.Players[i].ShotsRemaining--
		}
		scorer = r.Players[i]
		return commitMutation
	})
	if !ok {
		return Room{}, false
	}

	c.publish(EventScoreUpdated, &room, &scorer)
	return room, true
}

// AdvanceTurn hands the turn to the next eligible player, or completes the
// game when nobody is left to play.
func (c *Coordinator) AdvanceTurn(roomID string) (Room, bool) {
	var turnEvent EventType
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		if r.Status != StatusPlaying {
			return abortMutation
		}
		turnEvent = advanceRoomTurn(r)
		return commitMutation
	})
	if !ok {
		return Room{}, false
	}

	c.publishTurnOutcome(turnEvent, &room)
	return room, true
}

// advanceRoomTurn scans forward circularly from the current index for the next
// connected player with shots left. The scan order is strictly list order
// starting just after the current player; tests depend on that determinism.
// Two full traversals without a hit means the game is over: every turn flag is
// cleared and the room is marked completed.
func advanceRoomTurn(r *Room) EventType {
	n := len(r.Players)
	for step := 1; step <= 2*n; step++ {
		idx := (r.CurrentPlayerIndex + step) % n
		candidate := &r.Players[idx]
		if candidate.ShotsRemaining > 0 && candidate.IsConnected {
			for i := range r.Players {
				r.Players[i].IsCurrentTurn = false
			}
			candidate.IsCurrentTurn = true
			r.CurrentPlayerIndex = idx
			return EventTurnChanged
		}
	}

	for i := range r.Players {
		r.Players[i].IsCurrentTurn = false
	}
	r.Status = StatusCompleted
	return EventGameCompleted
}

// Winner reports the winner of a completed game: the first player in list
// order holding the highest score. An all-zero board has no winner. The second
// return is false only when the room is unknown.
func (c *Coordinator) Winner(roomID string) (*Player, bool) {
	room, ok := c.store.Get(roomID)
	if !ok {
		return nil, false
	}
	return WinnerOf(room), true
}

// WinnerOf applies the winner rule to a room snapshot. Exposed so collaborators
// reacting to gameCompleted (reward payout, history) resolve the same player
// the coordinator would.
func WinnerOf(room Room) *Player {
	if room.Status != StatusCompleted {
		return nil
	}
	var winner *Player
	highest := 0
	for i := range room.Players {
		if room.Players[i].Score > highest {
			highest = room.Players[i].Score
			winner = &room.Players[i]
		}
	}
	if winner == nil {
		return nil
	}
	w := *winner
	return &w
}

// ResetGame rewinds a room to a fresh waiting state for a replay: scores
// zeroed, shots refilled, index 0 back on the turn.
func (c *Coordinator) ResetGame(roomID string) (Room, bool) {
	room, ok := c.store.mutate(roomID, func(r *Room) mutateOutcome {
		for i := range r.Players {
			r.Players[i].Score = 0
			r.Players[i].ShotsRemaining = r.ShotsPerPlayer
			r.Players[i].IsCurrentTurn = i == 0
		}
		r.Status = StatusWaiting
		r.CurrentPlayerIndex = 0
		return commitMutation
	})
	if !ok {
		return Room{}, false
	}

	c.publish(EventGameReset, &room, nil)
	return room, true
}
