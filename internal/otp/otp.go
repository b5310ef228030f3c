package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	Min = 1000
	Max = 9999

	TTL = 10 * time.Minute
)

var span = big.NewInt(Max - Min + 1)

// Generate returns a uniformly distributed code in [Min, Max].
func Generate() (int, error) {
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, fmt.Errorf("otp: read random: %w", err)
	}
	return int(n.Int64()) + Min, nil
}

func ExpiresAt(now time.Time) time.Time {
	return now.Add(TTL)
}

// Parse accepts the code as typed by a user. ok is false for anything
// that cannot be a valid code.
func Parse(s string) (code int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < Min || n > Max {
		return 0, false
	}
	return n, true
}

// Expired reports whether now is past expiry. The expiry instant itself is
// still accepted.
func Expired(expiry, now time.Time) bool {
	return now.After(expiry)
}
