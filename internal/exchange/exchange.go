// Package exchange wraps the Binance spot REST API behind a small client
// with normalized, decimal-typed records. All failures surface as *Error so
// the engine can treat any collaborator problem uniformly: log and drop the
// signal, never crash the loop.
package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"binbot/internal/logger"
	"binbot/internal/model"
)

// Side is an order side.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Error wraps a failed exchange call with the operation that failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("exchange: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// api is the flat seam over the go-binance fluent services, so tests can
// inject a fake without a network.
type api interface {
	Account(ctx context.Context) (*binance.Account, error)
	OpenOrders(ctx context.Context, symbol string) ([]*binance.Order, error)
	CreateOrder(ctx context.Context, symbol string, side binance.SideType, orderType binance.OrderType, quantity, price, clientOrderID string) (*binance.CreateOrderResponse, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	ExchangeInfo(ctx context.Context, symbol string) (*binance.ExchangeInfo, error)
}

type binanceAPI struct {
	client *binance.Client
}

func (b *binanceAPI) Account(ctx context.Context) (*binance.Account, error) {
	return b.client.NewGetAccountService().Do(ctx)
}

func (b *binanceAPI) OpenOrders(ctx context.Context, symbol string) ([]*binance.Order, error) {
	svc := b.client.NewListOpenOrdersService()
	if symbol != "" {
		svc = svc.Symbol(symbol)
	}
	return svc.Do(ctx)
}

func (b *binanceAPI) CreateOrder(ctx context.Context, symbol string, side binance.SideType, orderType binance.OrderType, quantity, price, clientOrderID string) (*binance.CreateOrderResponse, error) {
	svc := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(side).
		Type(orderType).
		Quantity(quantity).
		NewClientOrderID(clientOrderID)
	if orderType == binance.OrderTypeLimit {
		svc = svc.TimeInForce(binance.TimeInForceTypeGTC).Price(price)
	}
	return svc.Do(ctx)
}

func (b *binanceAPI) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	_, err := b.client.NewCancelOrderService().Symbol(symbol).OrderID(orderID).Do(ctx)
	return err
}

func (b *binanceAPI) ExchangeInfo(ctx context.Context, symbol string) (*binance.ExchangeInfo, error) {
	return b.client.NewExchangeInfoService().Symbol(symbol).Do(ctx)
}

// Client is the Binance spot client used by the engine and the chat
// responder.
type Client struct {
	api api
	log *logger.Logger

	mu      sync.Mutex
	symbols map[string]model.SymbolInfo
}

// New creates a client. When testnet is true all calls go to the Binance
// spot testnet.
func New(apiKey, apiSecret string, testnet bool, log *logger.Logger) *Client {
	binance.UseTestnet = testnet
	return &Client{
		api:     &binanceAPI{client: binance.NewClient(apiKey, apiSecret)},
		log:     log,
		symbols: make(map[string]model.SymbolInfo),
	}
}

func newWithAPI(a api, log *logger.Logger) *Client {
	return &Client{api: a, log: log, symbols: make(map[string]model.SymbolInfo)}
}

// GetBalance returns the account balance snapshot for one asset. An asset
// the account has never held comes back as a zero balance, not an error.
func (c *Client) GetBalance(ctx context.Context, asset string) (model.Balance, error) {
	account, err := c.api.Account(ctx)
	if err != nil {
		return model.Balance{}, wrap("get balance", err)
	}

	for _, b := range account.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return model.Balance{}, wrap("get balance", fmt.Errorf("parse free %q: %w", b.Free, err))
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return model.Balance{}, wrap("get balance", fmt.Errorf("parse locked %q: %w", b.Locked, err))
		}
		return model.Balance{Asset: asset, Free: free, Locked: locked}, nil
	}

	return model.Balance{Asset: asset, Free: decimal.Zero, Locked: decimal.Zero}, nil
}

// GetOpenOrders lists open orders, optionally filtered by symbol (empty
// symbol means all).
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]model.Order, error) {
	raw, err := c.api.OpenOrders(ctx, symbol)
	if err != nil {
		return nil, wrap("get open orders", err)
	}

	orders := make([]model.Order, 0, len(raw))
	for _, o := range raw {
		order, err := orderFromBinance(o)
		if err != nil {
			return nil, wrap("get open orders", err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// PlaceMarketOrder submits a market order for qty of the base asset.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side Side, qty decimal.Decimal) (model.Order, error) {
	resp, err := c.api.CreateOrder(ctx, symbol, binance.SideType(side), binance.OrderTypeMarket, qty.String(), "", uuid.NewString())
	if err != nil {
		c.log.Error("market order failed",
			zap.String("symbol", symbol),
			zap.String("side", string(side)),
			zap.String("qty", qty.String()),
			zap.Error(err))
		return model.Order{}, wrap("place market order", err)
	}

	order, err := orderFromCreateResponse(resp)
	if err != nil {
		return model.Order{}, wrap("place market order", err)
	}
	c.log.Info("market order placed",
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.String("qty", qty.String()),
		zap.Int64("order_id", order.OrderID),
		zap.String("status", order.Status))
	return order, nil
}

// PlaceLimitOrder submits a GTC limit order.
func (c *Client) PlaceLimitOrder(ctx context.Context, symbol string, side Side, qty, price decimal.Decimal) (model.Order, error) {
	resp, err := c.api.CreateOrder(ctx, symbol, binance.SideType(side), binance.OrderTypeLimit, qty.String(), price.String(), uuid.NewString())
	if err != nil {
		c.log.Error("limit order failed",
			zap.String("symbol", symbol),
			zap.String("side", string(side)),
			zap.String("qty", qty.String()),
			zap.String("price", price.String()),
			zap.Error(err))
		return model.Order{}, wrap("place limit order", err)
	}

	order, err := orderFromCreateResponse(resp)
	if err != nil {
		return model.Order{}, wrap("place limit order", err)
	}
	c.log.Info("limit order placed",
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.String("qty", qty.String()),
		zap.String("price", price.String()),
		zap.Int64("order_id", order.OrderID))
	return order, nil
}

// CancelOrder cancels one open order.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	if err := c.api.CancelOrder(ctx, symbol, orderID); err != nil {
		return wrap("cancel order", err)
	}
	c.log.Info("order cancelled",
		zap.String("symbol", symbol),
		zap.Int64("order_id", orderID))
	return nil
}

func orderFromBinance(o *binance.Order) (model.Order, error) {
	price, err := decimal.NewFromString(o.Price)
	if err != nil {
		return model.Order{}, fmt.Errorf("parse price %q: %w", o.Price, err)
	}
	origQty, err := decimal.NewFromString(o.OrigQuantity)
	if err != nil {
		return model.Order{}, fmt.Errorf("parse origQty %q: %w", o.OrigQuantity, err)
	}
	executedQty, err := decimal.NewFromString(o.ExecutedQuantity)
	if err != nil {
		return model.Order{}, fmt.Errorf("parse executedQty %q: %w", o.ExecutedQuantity, err)
	}
	return model.Order{
		Symbol:      o.Symbol,
		OrderID:     o.OrderID,
		Price:       price,
		OrigQty:     origQty,
		ExecutedQty: executedQty,
		Status:      string(o.Status),
		Side:        string(o.Side),
		Type:        string(o.Type),
	}, nil
}

func orderFromCreateResponse(resp *binance.CreateOrderResponse) (model.Order, error) {
	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return model.Order{}, fmt.Errorf("parse price %q: %w", resp.Price, err)
	}
	origQty, err := decimal.NewFromString(resp.OrigQuantity)
	if err != nil {
		return model.Order{}, fmt.Errorf("parse origQty %q: %w", resp.OrigQuantity, err)
	}
	executedQty, err := decimal.NewFromString(resp.ExecutedQuantity)
	if err != nil {
		return model.Order{}, fmt.Errorf("parse executedQty %q: %w", resp.ExecutedQuantity, err)
	}
	return model.Order{
		Symbol:      resp.Symbol,
		OrderID:     resp.OrderID,
		Price:       price,
		OrigQty:     origQty,
		ExecutedQty: executedQty,
		Status:      string(resp.Status),
		Side:        string(resp.Side),
		Type:        string(resp.Type),
	}, nil
}
