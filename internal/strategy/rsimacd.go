package strategy

import (
	"github.com/shopspring/decimal"

	"binbot/internal/model"
)

const (
	rsiLength  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9

	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// Fixed stop/target bands: 1% below and 2% above the entry close. These are
// a compatibility constant of the strategy, not derived from volatility.
var (
	stopLossRatio   = decimal.RequireFromString("0.99")
	takeProfitRatio = decimal.RequireFromString("1.02")
)

// RSIMACD enters on oversold RSI with rising MACD momentum and exits on
// overbought RSI with falling momentum.
type RSIMACD struct {
	analyzer TechnicalAnalyzer
}

// NewRSIMACD creates the strategy around the given analyzer.
func NewRSIMACD(analyzer TechnicalAnalyzer) *RSIMACD {
	return &RSIMACD{analyzer: analyzer}
}

// OnBar appends the bar to the analyzer's window and evaluates the rules.
// Insufficient history returns nil without error.
func (s *RSIMACD) OnBar(bar model.Bar) *model.TradeSignal {
	s.analyzer.Add(bar)

	rsi, ok := s.analyzer.RSI(rsiLength)
	if !ok {
		return nil
	}
	_, histogram, signalLine, ok := s.analyzer.MACD(macdFast, macdSlow, macdSignal)
	if !ok {
		return nil
	}

	if rsi < rsiOversold && histogram > 0 && histogram > signalLine {
		stopLoss := bar.Close.Mul(stopLossRatio)
		takeProfit := bar.Close.Mul(takeProfitRatio)
		return &model.TradeSignal{
			Action:     model.ActionEnter,
			StopLoss:   &stopLoss,
			TakeProfit: &takeProfit,
		}
	}

	if rsi > rsiOverbought && histogram < 0 && histogram < signalLine {
		return &model.TradeSignal{Action: model.ActionExit}
	}

	return nil
}
