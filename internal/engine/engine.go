// Package engine coordinates the trading loop: it feeds bars to the
// strategy, sizes entries under the risk budget, gates signals through the
// position state machine, and submits orders. All collaborator failures are
// logged and absorbed; the next bar is evaluated independently.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"binbot/internal/exchange"
	"binbot/internal/logger"
	"binbot/internal/model"
	"binbot/internal/risk"
	"binbot/internal/strategy"
)

// Exchange is the slice of the exchange client the engine uses.
type Exchange interface {
	GetBalance(ctx context.Context, asset string) (model.Balance, error)
	PlaceMarketOrder(ctx context.Context, symbol string, side exchange.Side, qty decimal.Decimal) (model.Order, error)
}

// Engine runs the decision loop for one symbol. All methods execute on the
// stream worker's delivery callback, one bar at a time, so no internal
// locking is needed.
type Engine struct {
	symbol     string
	baseAsset  string
	quoteAsset string

	strategy strategy.Strategy
	sizer    *risk.Sizer
	exchange Exchange
	journal  *Journal
	log      *logger.Logger

	position PositionState
}

// New creates an engine for symbol. The base asset is derived by trimming
// the quote asset suffix from the symbol (BTCUSDT/USDT → BTC).
func New(symbol, quoteAsset string, strat strategy.Strategy, sizer *risk.Sizer, ex Exchange, journal *Journal, log *logger.Logger) *Engine {
	return &Engine{
		symbol:     symbol,
		baseAsset:  strings.TrimSuffix(symbol, quoteAsset),
		quoteAsset: quoteAsset,
		strategy:   strat,
		sizer:      sizer,
		exchange:   ex,
		journal:    journal,
		log:        log,
		position:   Flat,
	}
}

// Position returns the current position state.
func (e *Engine) Position() PositionState {
	return e.position
}

// OnBar runs one bar through the strategy and acts on the resulting signal,
// if any.
func (e *Engine) OnBar(ctx context.Context, bar model.Bar) {
	e.log.Info("bar received",
		zap.String("symbol", e.symbol),
		zap.String("close", bar.Close.String()),
		zap.Int64("bar_time", bar.Timestamp))

	sig := e.strategy.OnBar(bar)
	if sig == nil {
		e.record(bar, nil, "no_signal", decimal.Zero, 0, "")
		return
	}

	e.log.Info("signal generated",
		zap.String("symbol", e.symbol),
		zap.String("action", string(sig.Action)))
	e.HandleSignal(ctx, sig, bar)
}

// HandleSignal gates the signal through the position state machine and
// issues the corresponding market order. State transitions happen only
// after the exchange confirms acceptance.
func (e *Engine) HandleSignal(ctx context.Context, sig *model.TradeSignal, bar model.Bar) {
	switch sig.Action {
	case model.ActionEnter:
		if e.position != Flat {
			e.log.Info("enter signal ignored, already in position", zap.String("symbol", e.symbol))
			e.record(bar, sig, "skipped_in_position", decimal.Zero, 0, "")
			return
		}
		e.enter(ctx, sig, bar)
	case model.ActionExit:
		if e.position != Long {
			e.log.Info("exit signal ignored, not in position", zap.String("symbol", e.symbol))
			e.record(bar, sig, "skipped_no_position", decimal.Zero, 0, "")
			return
		}
		e.exit(ctx, sig, bar)
	}
}

func (e *Engine) enter(ctx context.Context, sig *model.TradeSignal, bar model.Bar) {
	// The strategy contract guarantees a stop on enter signals, but an
	// entry sized without one would be unbounded risk.
	if sig.StopLoss == nil {
		e.log.Error("enter signal without stop loss dropped", zap.String("symbol", e.symbol))
		e.record(bar, sig, "missing_stop_loss", decimal.Zero, 0, "")
		return
	}

	balance, err := e.exchange.GetBalance(ctx, e.quoteAsset)
	if err != nil {
		e.log.Error("balance query failed, signal dropped",
			zap.String("symbol", e.symbol),
			zap.String("stage", "enter_balance"),
			zap.Error(err))
		e.record(bar, sig, "balance_failed", decimal.Zero, 0, err.Error())
		return
	}

	qty, err := e.sizer.PositionSize(bar.Close, *sig.StopLoss)
	if err != nil {
		e.log.Error("position sizing failed, signal dropped",
			zap.String("symbol", e.symbol),
			zap.String("stage", "enter_sizing"),
			zap.Error(err))
		e.record(bar, sig, "sizing_failed", decimal.Zero, 0, err.Error())
		return
	}

	// Cap the order at the available quote balance. Exchange minimums
	// (min qty, step size, min notional) are known via symbol info but
	// deliberately not applied here; undersized orders are left for the
	// exchange to reject.
	if qty.Mul(bar.Close).GreaterThan(balance.Free) {
		clamped := balance.Free.Div(bar.Close)
		e.log.Info("position size clamped to free balance",
			zap.String("symbol", e.symbol),
			zap.String("sized_qty", qty.String()),
			zap.String("clamped_qty", clamped.String()))
		qty = clamped
	}

	if qty.LessThanOrEqual(decimal.Zero) {
		e.log.Info("enter signal dropped, computed size is zero", zap.String("symbol", e.symbol))
		e.record(bar, sig, "skipped_zero_size", qty, 0, "")
		return
	}

	order, err := e.exchange.PlaceMarketOrder(ctx, e.symbol, exchange.SideBuy, qty)
	if err != nil {
		e.record(bar, sig, "order_failed", qty, 0, err.Error())
		return
	}

	e.position = Long
	e.log.Info("entered position",
		zap.String("symbol", e.symbol),
		zap.String("qty", qty.String()),
		zap.Int64("order_id", order.OrderID),
		zap.String("stop_loss", sig.StopLoss.String()),
		zap.String("take_profit", takeProfitString(sig)))
	e.record(bar, sig, "order_submitted", qty, order.OrderID, "")
}

func (e *Engine) exit(ctx context.Context, sig *model.TradeSignal, bar model.Bar) {
	balance, err := e.exchange.GetBalance(ctx, e.baseAsset)
	if err != nil {
		e.log.Error("balance query failed, signal dropped",
			zap.String("symbol", e.symbol),
			zap.String("stage", "exit_balance"),
			zap.Error(err))
		e.record(bar, sig, "balance_failed", decimal.Zero, 0, err.Error())
		return
	}

	if balance.Free.LessThanOrEqual(decimal.Zero) {
		// Nothing to liquidate.
		e.record(bar, sig, "skipped_no_balance", decimal.Zero, 0, "")
		return
	}

	order, err := e.exchange.PlaceMarketOrder(ctx, e.symbol, exchange.SideSell, balance.Free)
	if err != nil {
		e.record(bar, sig, "order_failed", balance.Free, 0, err.Error())
		return
	}

	e.position = Flat
	e.log.Info("exited position",
		zap.String("symbol", e.symbol),
		zap.String("qty", balance.Free.String()),
		zap.Int64("order_id", order.OrderID))
	e.record(bar, sig, "order_submitted", balance.Free, order.OrderID, "")
}

func (e *Engine) record(bar model.Bar, sig *model.TradeSignal, result string, qty decimal.Decimal, orderID int64, detail string) {
	if e.journal == nil {
		return
	}
	rec := Record{
		BarTime: time.UnixMilli(bar.Timestamp).UTC(),
		Symbol:  e.symbol,
		Close:   bar.Close.String(),
		Result:  result,
		OrderID: orderID,
		Detail:  detail,
	}
	if sig != nil {
		rec.Action = string(sig.Action)
	}
	if !qty.IsZero() {
		rec.Qty = qty.String()
	}
	e.journal.Append(rec)
}

func takeProfitString(sig *model.TradeSignal) string {
	if sig.TakeProfit == nil {
		return ""
	}
	return sig.TakeProfit.String()
}
