package game

import (
	"math/rand/v2"
	"strings"
)

const (
	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type randomCodes struct{}

// NewRoomCodes returns a generator of 6 character uppercase alphanumeric codes.
// Uniqueness among live rooms is enforced by the registry, not here.
func NewRoomCodes() RoomCodeGenerator {
	return randomCodes{}
}

func (randomCodes) Generate() string {
	var b strings.Builder
	b.Grow(roomCodeLength)
	for range roomCodeLength {
		b.WriteByte(roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))])
	}
	return b.String()
}

// NormalizeCode makes room codes case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
