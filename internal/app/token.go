package app

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
)

// Token authorizes one player: 32 lowercase hex characters built from two
// zero-padded 64-bit random draws.
type Token string

const tokenLength = 32

func NewToken() Token {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("token entropy: %v", err))
	}

	r1 := binary.BigEndian.Uint64(buf[:8])
	r2 := binary.BigEndian.Uint64(buf[8:])

	return Token(fmt.Sprintf("%016x%016x", r1, r2))
}

// ParseBearer extracts the token from an Authorization header. Anything but
// the exact "Bearer " prefix followed by a token-sized value is rejected.
func ParseBearer(header string) (Token, bool) {
	const prefix = "Bearer "

	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := header[len(prefix):]
	if len(raw) != tokenLength {
		return "", false
	}
	return Token(raw), true
}
