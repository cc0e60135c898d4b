package engine

// PositionState tracks whether the strategy currently holds the base asset.
// It transitions only on accepted orders; failed submissions leave it
// untouched.
type PositionState int

const (
	// Flat means no open position; only enter signals may act.
	Flat PositionState = iota
	// Long means an entry order was accepted; only exit signals may act.
	Long
)

func (p PositionState) String() string {
	switch p {
	case Flat:
		return "flat"
	case Long:
		return "long"
	default:
		return "unknown"
	}
}
