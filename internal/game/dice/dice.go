// Package dice provides the randomness abstraction used by every loot
// generation pass, plus the small set of distribution helpers the engine
// draws from (inclusive integer ranges, percentage chances, normal draws).
package dice

// Source is the randomness provider for loot generation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}
