// Package indicator implements the series math behind the strategy's
// technical analysis: SMA, EMA, Wilder RSI and MACD. Values are float64;
// callers convert back to exact decimals at the money boundary.
//
// Every function reports ok=false instead of an error when the series is
// too short — warm-up is an expected steady state, not a failure.
package indicator

// SMA returns the simple moving average of the last length values.
func SMA(series []float64, length int) (float64, bool) {
	if length <= 0 || len(series) < length {
		return 0, false
	}
	sum := 0.0
	for _, v := range series[len(series)-length:] {
		sum += v
	}
	return sum / float64(length), true
}

// EMA returns the exponential moving average of the series, seeded with the
// SMA of the first length values.
func EMA(series []float64, length int) (float64, bool) {
	ema := emaSeries(series, length)
	if ema == nil {
		return 0, false
	}
	return ema[len(ema)-1], true
}

// emaSeries computes the EMA over the whole series. The returned slice is
// aligned so that index 0 corresponds to series[length-1]; nil when the
// series is shorter than length.
func emaSeries(series []float64, length int) []float64 {
	if length <= 0 || len(series) < length {
		return nil
	}

	seed := 0.0
	for _, v := range series[:length] {
		seed += v
	}
	seed /= float64(length)

	out := make([]float64, 0, len(series)-length+1)
	out = append(out, seed)

	k := 2.0 / (float64(length) + 1.0)
	prev := seed
	for _, v := range series[length:] {
		prev = v*k + prev*(1.0-k)
		out = append(out, prev)
	}
	return out
}

// RSI returns the Relative Strength Index over the series using Wilder's
// smoothing with an SMA seed. Needs length+1 values (length deltas).
func RSI(series []float64, length int) (float64, bool) {
	if length <= 0 || len(series) < length+1 {
		return 0, false
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= length; i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(length)
	avgLoss /= float64(length)

	// Wilder smoothing over the remaining deltas.
	p := float64(length)
	for i := length + 1; i < len(series); i++ {
		delta := series[i] - series[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return 100.0, true
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs)), true
}

// MACD returns the latest MACD line, histogram and signal line for the
// series. The MACD line is EMA(fast) − EMA(slow); the signal line is the
// EMA(signal) of the MACD line; the histogram is their difference. The
// signal line needs slow+signal−1 values to be defined.
func MACD(series []float64, fast, slow, signal int) (line, histogram, signalLine float64, ok bool) {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return 0, 0, 0, false
	}
	if len(series) < slow+signal-1 {
		return 0, 0, 0, false
	}

	fastEMA := emaSeries(series, fast)
	slowEMA := emaSeries(series, slow)

	// Both EMA slices end at the last bar; align them from the tail.
	macd := make([]float64, len(slowEMA))
	offset := len(fastEMA) - len(slowEMA)
	for i := range slowEMA {
		macd[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalEMA := emaSeries(macd, signal)
	if signalEMA == nil {
		return 0, 0, 0, false
	}

	line = macd[len(macd)-1]
	signalLine = signalEMA[len(signalEMA)-1]
	histogram = line - signalLine
	return line, histogram, signalLine, true
}
