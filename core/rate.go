package core

// Toggle half-period bounds, in milliseconds
const (
	RateInitial uint32 = 1000 // value at every power-up, and the reset target
	RateFloor   uint32 = 125  // smallest half-period ever programmed
)

// NextRate returns the half-period that follows r after a button press:
// r halved, or RateInitial once halving would drop below RateFloor.
func NextRate(r uint32) uint32 {
	next := r / 2
	if next < RateFloor {
		return RateInitial
	}
	return next
}
