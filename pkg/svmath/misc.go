package svmath

// Smoothstep is the cubic ease 3t^2 - 2t^3, with t clamped to [0,1].
// This is the fade profile used along blend seams.
func Smoothstep(t float64) float64 {
	if t <= 0 { return 0 }
	if t >= 1 { return 1 }
	return t * t * (3.0 - 2.0*t)
}

// Lerp is plain linear interpolation, a + t*(b-a).
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
