package transition

// Ease clamps x to [0,1] and applies the named curve. Every curve keeps
// 0 -> 0 and 1 -> 1; unknown kinds are linear.
func Ease(kind string, x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	switch kind {
	case "smooth":
		// 3x^2 - 2x^3
		return x * x * (3 - 2*x)
	case "cubic":
		// 6x^5 - 15x^4 + 10x^3
		return x * x * x * (x*(x*6-15) + 10)
	}
	return x
}
