package reinforce

// Timing ramps from 0 to 0.5 over the first ten moves, holds, then climbs
// again after move forty until it saturates at 1.
func Timing(moves int) float64 {
	if moves < 10 {
		return float64(moves) / 20
	}
	t := 0.5
	if moves > 40 {
		t += min(float64(moves-40)/40, 0.5)
	}
	return t
}
