package dice

import "math"

// IntBetween returns a uniformly distributed int in [lo, hi].
// When lo > hi the bounds are swapped.
//
// Precondition: src must be non-nil.
// Postcondition: lo <= result <= hi (after swap).
func IntBetween(src Source, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// FloatBetween returns a uniformly distributed float in [lo, hi).
func FloatBetween(src Source, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + src.Float64()*(hi-lo)
}

// Chance100 reports whether a roll against percent (0-100) succeeds.
//
// Postcondition: percent <= 0 never succeeds; percent >= 100 always succeeds.
func Chance100(src Source, percent float64) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Float64()*100 < percent
}

// maxNormalAttempts bounds the re-roll loop in Normal.
const maxNormalAttempts = 100

// Normal draws from a normal distribution with the given mean and standard
// deviation using the Box-Muller transform. Negative results are re-drawn;
// after maxNormalAttempts the result falls back to a uniform draw in
// [0.01, 2*mean).
//
// Postcondition: result >= 0 whenever mean >= 0.
func Normal(src Source, mean, std float64) float64 {
	for attempt := 0; attempt <= maxNormalAttempts; attempt++ {
		u := 0.0
		for u == 0 {
			u = src.Float64()
		}
		v := 0.0
		for v == 0 {
			v = src.Float64()
		}
		w := math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
		drawn := mean + w*std
		if drawn >= 0 {
			return drawn
		}
	}
	return FloatBetween(src, 0.01, mean*2)
}
