package live2d

import (
	"math/big"
	"math/rand/v2"
	"strings"
)

// Persona tokens for the two rigs.
const (
	Persona22 = "22"
	Persona33 = "33"
)

// Rand is the random source used for uniform picks. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the goroutine-safe top-level math/rand/v2 generator.
var DefaultRand Rand = globalRand{}

// Params are the selection inputs of one request. Empty fields are absent.
type Params struct {
	// Key names a catalog entry explicitly.
	Key string
	// Seed is a raw numeric id or timestamp; it is parsed leniently.
	Seed string
	// DefaultIndex is a fixed fallback position, or nil.
	DefaultIndex *int
}

// Selection is the outcome of a catalog pick.
type Selection struct {
	Key      string
	Index    int
	Textures [SlotCount]string
}

// Select picks a catalog entry and resolves its texture slots.
//
// Rules, first match wins: an existing Key; a Seed that parses as an integer,
// reduced modulo the eligible pool; DefaultIndex when it lies inside the
// catalog; a uniform pick from the eligible pool.
func Select(c *Catalog, allowAdult bool, p Params, rng Rand) Selection {
	if rng == nil {
		rng = DefaultRand
	}
	idx := pickIndex(c, allowAdult, p, rng)
	e := c.Entry(idx)
	s := Selection{Key: e.Key, Index: idx}
	for i, slot := range e.Slots {
		s.Textures[i] = resolveSlot(slot, rng)
	}
	return s
}

func pickIndex(c *Catalog, allowAdult bool, p Params, rng Rand) int {
	if p.Key != "" {
		if i, ok := c.Lookup(p.Key); ok {
			return i
		}
	}
	pool := c.EligibleSize(allowAdult)
	if k, ok := ParseSeed(p.Seed); ok {
		return SeedIndex(k, pool)
	}
	if p.DefaultIndex != nil && *p.DefaultIndex >= 0 && *p.DefaultIndex < c.Len() {
		return *p.DefaultIndex
	}
	return rng.IntN(pool)
}

func resolveSlot(s Slot, rng Rand) string {
	if s.Fixed() {
		return s.Options[0]
	}
	return s.Options[rng.IntN(len(s.Options))]
}

// SeedIndex maps any integer onto [0, pool).
func SeedIndex(k *big.Int, pool int) int {
	// Mod is Euclidean, so negative seeds land in range too.
	return int(new(big.Int).Mod(k, big.NewInt(int64(pool))).Int64())
}

// ParseSeed reads a leading decimal integer the way browsers' parseInt does:
// leading whitespace and one sign are allowed, trailing characters are
// ignored. "41", " 41px" and "-3" parse; "", "abc" and "+" do not.
// Integers of any size parse exactly.
func ParseSeed(s string) (*big.Int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil, false
	}
	return new(big.Int).SetString(s[:end], 10)
}

// PickPersona echoes an exact persona token and otherwise flips a coin.
// Matching is byte-exact: "22 ", "022" and "22.0" are not personas.
func PickPersona(param string, rng Rand) string {
	switch param {
	case Persona22, Persona33:
		return param
	}
	if rng == nil {
		rng = DefaultRand
	}
	if rng.IntN(2) == 0 {
		return Persona22
	}
	return Persona33
}
