// Package risk converts an account budget into a concrete fill size.
package risk

// Inputs describe one sizing request. Budget is the capital available to
// the target account, PerTradePct the slice of it a single fill may
// consume, Price the instrument's current price.
type Inputs struct {
	Budget      float64
	PerTradePct float64
	Price       float64
}

// Result is the sized fill. Units is zero when the inputs cannot produce
// a positive size; callers treat that as a rejection.
type Result struct {
	Units    float64
	Notional float64
}

// Calculate sizes a single fill from the given inputs. It is pure and
// never errors; degenerate inputs yield a zero Result.
func Calculate(in Inputs) Result {
	if in.Budget <= 0 || in.PerTradePct <= 0 || in.Price <= 0 {
		return Result{}
	}

	notional := in.Budget * in.PerTradePct
	return Result{
		Units:    notional / in.Price,
		Notional: notional,
	}
}
