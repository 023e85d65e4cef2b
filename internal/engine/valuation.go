package engine

// Valuation returns the company value implied by selling equity percent for
// amount, i.e. amount / (equity/100). Non-positive equity yields 0.
func Valuation(amount, equity float64) float64 {
	if equity <= 0 {
		return 0
	}
	return amount * 100 / equity
}
