package game

import "github.com/google/uuid"

const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6

	// After this many collisions a full uuid is used instead of a short code.
	roomCodeAttempts = 16
)

// newRoomCode derives a short shareable room code from uuid entropy. Ambiguous
// glyphs (0/O, 1/I) are excluded from the alphabet.
func newRoomCode() string {
	u := uuid.New()
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[int(u[i])%len(roomCodeAlphabet)]
	}
	return string(code)
}
