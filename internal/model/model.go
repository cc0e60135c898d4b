// Package model holds the value types shared across the trading pipeline.
// Money, price and quantity fields are exact decimals end to end; binary
// floats are confined to indicator math.
package model

import "github.com/shopspring/decimal"

// Bar is one closed OHLCV kline. Timestamp is the kline open time in
// epoch milliseconds. Bars are immutable once constructed; the stream
// ingestor never forwards in-progress klines.
type Bar struct {
	Timestamp int64
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// Action is the kind of trade a signal asks for.
type Action string

const (
	ActionEnter Action = "enter"
	ActionExit  Action = "exit"
)

// TradeSignal is the strategy's per-bar output. Enter signals always carry
// stop loss and take profit; exit signals carry neither.
type TradeSignal struct {
	Action     Action
	StopLoss   *decimal.Decimal
	TakeProfit *decimal.Decimal
}

// Balance is a point-in-time snapshot of one asset's account balance.
type Balance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns free plus locked.
func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// Order is a normalized exchange order record.
type Order struct {
	Symbol      string
	OrderID     int64
	Price       decimal.Decimal
	OrigQty     decimal.Decimal
	ExecutedQty decimal.Decimal
	Status      string
	Side        string
	Type        string
}

// SymbolInfo carries the exchange's trading rules for one symbol. The
// order paths treat these as advisory; they are exposed for diagnostics
// and for the chat surface, not enforced before submission.
type SymbolInfo struct {
	Symbol      string
	BaseAsset   string
	QuoteAsset  string
	IsLive      bool
	MinQty      decimal.Decimal
	StepSize    decimal.Decimal
	MinNotional decimal.Decimal
	TickSize    decimal.Decimal
}
