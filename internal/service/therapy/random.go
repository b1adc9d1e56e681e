package therapy

import (
	"math/rand"
	"sync"
	"time"
)

// Random is the only source of variation in reply composition.
// *rand.Rand satisfies it; tests substitute fixed sources.
type Random interface {
	Intn(n int) int
	Float64() float64
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a goroutine-safe source seeded with seed. Every seed,
// zero included, yields a reproducible sequence.
func NewRandom(seed int64) Random {
	return &lockedRandom{rnd: rand.New(rand.NewSource(seed))}
}

// NewClockRandom returns a goroutine-safe source seeded from the clock.
func NewClockRandom() Random {
	return NewRandom(time.Now().UnixNano())
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}
