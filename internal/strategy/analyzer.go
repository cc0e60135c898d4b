package strategy

import (
	"binbot/internal/indicator"
	"binbot/internal/md"
	"binbot/internal/model"
)

// Analyzer owns the rolling bar window and computes indicators over its
// closing-price series. One instance per symbol; mutated only by the
// stream worker that delivers bars.
type Analyzer struct {
	window *md.BarWindow
}

// NewAnalyzer creates an analyzer with the default 200-bar window.
func NewAnalyzer() *Analyzer {
	return &Analyzer{window: md.NewBarWindow(md.DefaultCapacity)}
}

// Add appends a closed bar to the window.
func (a *Analyzer) Add(bar model.Bar) {
	a.window.Append(bar)
}

// Len returns the number of bars currently in the window.
func (a *Analyzer) Len() int {
	return a.window.Len()
}

// Latest returns the most recent bar in the window.
func (a *Analyzer) Latest() (model.Bar, bool) {
	return a.window.Last()
}

// RSI computes the Relative Strength Index over the close series.
func (a *Analyzer) RSI(length int) (float64, bool) {
	return indicator.RSI(a.window.Closes(), length)
}

// MACD computes the MACD line, histogram and signal line over the close
// series.
func (a *Analyzer) MACD(fast, slow, signal int) (line, histogram, signalLine float64, ok bool) {
	return indicator.MACD(a.window.Closes(), fast, slow, signal)
}

// SMA computes the simple moving average over the close series.
func (a *Analyzer) SMA(length int) (float64, bool) {
	return indicator.SMA(a.window.Closes(), length)
}

// EMA computes the exponential moving average over the close series.
func (a *Analyzer) EMA(length int) (float64, bool) {
	return indicator.EMA(a.window.Closes(), length)
}
