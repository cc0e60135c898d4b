package strategy

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"binbot/internal/model"
)

// cannedAnalyzer returns fixed indicator values regardless of input.
type cannedAnalyzer struct {
	rsi        float64
	rsiOK      bool
	line       float64
	histogram  float64
	signalLine float64
	macdOK     bool
	added      []model.Bar
}

func (c *cannedAnalyzer) Add(bar model.Bar) { c.added = append(c.added, bar) }

func (c *cannedAnalyzer) RSI(length int) (float64, bool) { return c.rsi, c.rsiOK }

func (c *cannedAnalyzer) MACD(fast, slow, signal int) (float64, float64, float64, bool) {
	return c.line, c.histogram, c.signalLine, c.macdOK
}

func sampleBar(close string) model.Bar {
	return model.Bar{
		Timestamp: 1678886400000,
		Open:      decimal.RequireFromString("100.00"),
		High:      decimal.RequireFromString("105.00"),
		Low:       decimal.RequireFromString("98.00"),
		Close:     decimal.RequireFromString(close),
		Volume:    decimal.RequireFromString("1000.00"),
	}
}

func TestOnBarAppendsToAnalyzer(t *testing.T) {
	analyzer := &cannedAnalyzer{rsiOK: true, macdOK: true, rsi: 50}
	strat := NewRSIMACD(analyzer)

	strat.OnBar(sampleBar("102.00"))
	require.Len(t, analyzer.added, 1)
}

func TestOnBarNoSignal(t *testing.T) {
	analyzer := &cannedAnalyzer{rsi: 50, rsiOK: true, line: 0.5, histogram: 0.1, signalLine: 0.4, macdOK: true}
	strat := NewRSIMACD(analyzer)

	require.Nil(t, strat.OnBar(sampleBar("102.00")))
}

func TestOnBarEnterSignal(t *testing.T) {
	analyzer := &cannedAnalyzer{rsi: 25, rsiOK: true, line: 0.5, histogram: 0.1, signalLine: 0.05, macdOK: true}
	strat := NewRSIMACD(analyzer)

	sig := strat.OnBar(sampleBar("20050.00"))
	require.NotNil(t, sig)
	require.Equal(t, model.ActionEnter, sig.Action)
	require.NotNil(t, sig.StopLoss)
	require.NotNil(t, sig.TakeProfit)
	require.True(t, sig.StopLoss.Equal(decimal.RequireFromString("19849.50")), "stop_loss = %s", sig.StopLoss)
	require.True(t, sig.TakeProfit.Equal(decimal.RequireFromString("20451.00")), "take_profit = %s", sig.TakeProfit)
}

func TestOnBarExitSignal(t *testing.T) {
	analyzer := &cannedAnalyzer{rsi: 75, rsiOK: true, line: -0.5, histogram: -0.1, signalLine: -0.05, macdOK: true}
	strat := NewRSIMACD(analyzer)

	sig := strat.OnBar(sampleBar("102.00"))
	require.NotNil(t, sig)
	require.Equal(t, model.ActionExit, sig.Action)
	require.Nil(t, sig.StopLoss)
	require.Nil(t, sig.TakeProfit)
}

func TestOnBarInsufficientHistory(t *testing.T) {
	strat := NewRSIMACD(&cannedAnalyzer{rsiOK: false, macdOK: false})
	require.Nil(t, strat.OnBar(sampleBar("102.00")))

	strat = NewRSIMACD(&cannedAnalyzer{rsi: 25, rsiOK: true, macdOK: false})
	require.Nil(t, strat.OnBar(sampleBar("102.00")))
}

// Signal emission must match the threshold rules exactly for arbitrary
// indicator triples.
func TestSignalRulesHoldForRandomTriples(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	strat := func(a *cannedAnalyzer) *model.TradeSignal {
		return NewRSIMACD(a).OnBar(sampleBar("102.00"))
	}

	for i := 0; i < 1000; i++ {
		analyzer := &cannedAnalyzer{
			rsi:        rng.Float64() * 100,
			rsiOK:      true,
			histogram:  rng.Float64()*2 - 1,
			signalLine: rng.Float64()*2 - 1,
			macdOK:     true,
		}
		sig := strat(analyzer)

		wantEnter := analyzer.rsi < 30 && analyzer.histogram > 0 && analyzer.histogram > analyzer.signalLine
		wantExit := analyzer.rsi > 70 && analyzer.histogram < 0 && analyzer.histogram < analyzer.signalLine

		switch {
		case wantEnter:
			require.NotNil(t, sig)
			require.Equal(t, model.ActionEnter, sig.Action)
		case wantExit:
			require.NotNil(t, sig)
			require.Equal(t, model.ActionExit, sig.Action)
		default:
			require.Nil(t, sig)
		}
	}
}

func TestWarmupWithRealAnalyzer(t *testing.T) {
	strat := NewRSIMACD(NewAnalyzer())

	// Any sequence shorter than the MACD warm-up must yield no signal.
	for i := 0; i < 25; i++ {
		sig := strat.OnBar(sampleBar("100.00"))
		require.Nil(t, sig, "bar %d", i)
	}
}

func TestFlatSeriesNeverSignals(t *testing.T) {
	strat := NewRSIMACD(NewAnalyzer())

	for i := 0; i < 60; i++ {
		require.Nil(t, strat.OnBar(sampleBar("100.00")))
	}
}
