// Package id generates ULIDs for positions and trade-log events.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator issues monotonic ULIDs. IDs stamped with the same millisecond
// remain lexicographically increasing.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewGenerator seeds a generator from seed. Equal seeds and equal timestamps
// give equal IDs, which keeps backtest journals reproducible.
func NewGenerator(seed int64) *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// At returns a ULID whose timestamp component is t.
func (g *Generator) At(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), g.entropy)
	if err != nil {
		// only fails if t is before the epoch or entropy is exhausted
		panic(err)
	}
	return id.String()
}

// Time extracts the timestamp encoded in a ULID string.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}

var std = NewGenerator(cryptoSeed())

func cryptoSeed() int64 {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}

// New returns a ULID stamped with the current time.
func New() string { return std.At(time.Now()) }

// At returns a ULID stamped with t from the process-wide generator.
func At(t time.Time) string { return std.At(t) }
