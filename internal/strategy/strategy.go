// Package strategy turns closed bars into trade signals. The generator is
// deliberately position-blind: gating by the current position is the
// engine's job.
package strategy

import "binbot/internal/model"

// Strategy consumes one closed bar at a time and emits an optional signal.
// A nil result means no signal, including during indicator warm-up.
type Strategy interface {
	OnBar(bar model.Bar) *model.TradeSignal
}

// TechnicalAnalyzer is the indicator surface a strategy evaluates against.
// The concrete Analyzer computes over the rolling bar window; tests feed
// canned values.
type TechnicalAnalyzer interface {
	Add(bar model.Bar)
	RSI(length int) (float64, bool)
	MACD(fast, slow, signal int) (line, histogram, signalLine float64, ok bool)
}
