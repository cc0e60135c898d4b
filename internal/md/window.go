package md

import "binbot/internal/model"

// DefaultCapacity is the number of bars kept for indicator computation.
const DefaultCapacity = 200

// BarWindow is a fixed-capacity FIFO ring of closed bars. One strategy
// instance owns one window; the only mutation is Append, and only the
// stream worker that feeds the strategy may call it.
type BarWindow struct {
	bars   []model.Bar
	size   int
	index  int
	filled bool
}

// NewBarWindow creates a window holding at most size bars.
func NewBarWindow(size int) *BarWindow {
	return &BarWindow{
		bars: make([]model.Bar, size),
		size: size,
	}
}

// Append adds a bar, evicting the oldest when the window is full.
func (w *BarWindow) Append(bar model.Bar) {
	w.bars[w.index] = bar
	w.index = (w.index + 1) % w.size
	if w.index == 0 {
		w.filled = true
	}
}

// Len returns the number of bars currently held.
func (w *BarWindow) Len() int {
	if w.filled {
		return w.size
	}
	return w.index
}

// Bars returns the held bars, oldest first.
func (w *BarWindow) Bars() []model.Bar {
	length := w.Len()
	result := make([]model.Bar, 0, length)
	if length == 0 {
		return result
	}
	if w.filled {
		result = append(result, w.bars[w.index:]...)
	}
	result = append(result, w.bars[:w.index]...)
	return result
}

// Closes returns the closing-price series, oldest first, as float64 for
// indicator math.
func (w *BarWindow) Closes() []float64 {
	bars := w.Bars()
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close.InexactFloat64()
	}
	return closes
}

// Last returns the most recently appended bar.
func (w *BarWindow) Last() (model.Bar, bool) {
	if w.Len() == 0 {
		return model.Bar{}, false
	}
	last := w.index - 1
	if last < 0 {
		last = w.size - 1
	}
	return w.bars[last], true
}
