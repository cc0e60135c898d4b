package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"binbot/internal/logger"
)

type fakeAPI struct {
	account    *binance.Account
	accountErr error

	openOrders    []*binance.Order
	openOrdersErr error
	ordersSymbol  string

	createResp *binance.CreateOrderResponse
	createErr  error
	createReq  struct {
		symbol        string
		side          binance.SideType
		orderType     binance.OrderType
		quantity      string
		price         string
		clientOrderID string
	}

	cancelErr     error
	cancelledID   int64
	exchangeInfo  *binance.ExchangeInfo
	infoErr       error
	infoCallCount int
}

func (f *fakeAPI) Account(ctx context.Context) (*binance.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeAPI) OpenOrders(ctx context.Context, symbol string) ([]*binance.Order, error) {
	f.ordersSymbol = symbol
	return f.openOrders, f.openOrdersErr
}

func (f *fakeAPI) CreateOrder(ctx context.Context, symbol string, side binance.SideType, orderType binance.OrderType, quantity, price, clientOrderID string) (*binance.CreateOrderResponse, error) {
	f.createReq.symbol = symbol
	f.createReq.side = side
	f.createReq.orderType = orderType
	f.createReq.quantity = quantity
	f.createReq.price = price
	f.createReq.clientOrderID = clientOrderID
	return f.createResp, f.createErr
}

func (f *fakeAPI) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	f.cancelledID = orderID
	return f.cancelErr
}

func (f *fakeAPI) ExchangeInfo(ctx context.Context, symbol string) (*binance.ExchangeInfo, error) {
	f.infoCallCount++
	return f.exchangeInfo, f.infoErr
}

func newTestClient(api *fakeAPI) *Client {
	return newWithAPI(api, logger.NewNop())
}

func TestGetBalance(t *testing.T) {
	api := &fakeAPI{account: &binance.Account{Balances: []binance.Balance{
		{Asset: "BTC", Free: "0.5", Locked: "0.1"},
		{Asset: "USDT", Free: "10000.00", Locked: "0"},
	}}}
	client := newTestClient(api)

	balance, err := client.GetBalance(context.Background(), "USDT")
	require.NoError(t, err)
	require.Equal(t, "USDT", balance.Asset)
	require.True(t, balance.Free.Equal(decimal.RequireFromString("10000.00")))
	require.True(t, balance.Locked.IsZero())
	require.True(t, balance.Total().Equal(decimal.RequireFromString("10000.00")))
}

func TestGetBalanceUnknownAssetIsZero(t *testing.T) {
	api := &fakeAPI{account: &binance.Account{}}
	client := newTestClient(api)

	balance, err := client.GetBalance(context.Background(), "DOGE")
	require.NoError(t, err)
	require.True(t, balance.Free.IsZero())
	require.True(t, balance.Locked.IsZero())
}

func TestGetBalanceWrapsAPIError(t *testing.T) {
	api := &fakeAPI{accountErr: errors.New("boom")}
	client := newTestClient(api)

	_, err := client.GetBalance(context.Background(), "USDT")
	var exchangeErr *Error
	require.ErrorAs(t, err, &exchangeErr)
	require.Equal(t, "get balance", exchangeErr.Op)
}

func TestGetOpenOrders(t *testing.T) {
	api := &fakeAPI{openOrders: []*binance.Order{{
		Symbol:           "BTCUSDT",
		OrderID:          42,
		Price:            "20000.00",
		OrigQuantity:     "0.5",
		ExecutedQuantity: "0.1",
		Status:           "PARTIALLY_FILLED",
		Side:             "BUY",
		Type:             "LIMIT",
	}}}
	client := newTestClient(api)

	orders, err := client.GetOpenOrders(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "BTCUSDT", api.ordersSymbol)
	require.Equal(t, int64(42), orders[0].OrderID)
	require.True(t, orders[0].Price.Equal(decimal.RequireFromString("20000.00")))
	require.Equal(t, "PARTIALLY_FILLED", orders[0].Status)
}

func TestPlaceMarketOrder(t *testing.T) {
	api := &fakeAPI{createResp: &binance.CreateOrderResponse{
		Symbol:           "BTCUSDT",
		OrderID:          7,
		Price:            "0",
		OrigQuantity:     "0.25",
		ExecutedQuantity: "0.25",
		Status:           "FILLED",
		Side:             "BUY",
		Type:             "MARKET",
	}}
	client := newTestClient(api)

	order, err := client.PlaceMarketOrder(context.Background(), "BTCUSDT", SideBuy, decimal.RequireFromString("0.25"))
	require.NoError(t, err)
	require.Equal(t, binance.OrderTypeMarket, api.createReq.orderType)
	require.Equal(t, binance.SideTypeBuy, api.createReq.side)
	require.Equal(t, "0.25", api.createReq.quantity)
	require.NotEmpty(t, api.createReq.clientOrderID)
	require.Equal(t, int64(7), order.OrderID)
	require.Equal(t, "FILLED", order.Status)
}

func TestPlaceLimitOrder(t *testing.T) {
	api := &fakeAPI{createResp: &binance.CreateOrderResponse{
		Symbol:           "BTCUSDT",
		OrderID:          8,
		Price:            "19000.00",
		OrigQuantity:     "0.5",
		ExecutedQuantity: "0",
		Status:           "NEW",
		Side:             "SELL",
		Type:             "LIMIT",
	}}
	client := newTestClient(api)

	order, err := client.PlaceLimitOrder(context.Background(), "BTCUSDT", SideSell,
		decimal.RequireFromString("0.5"), decimal.RequireFromString("19000.00"))
	require.NoError(t, err)
	require.Equal(t, binance.OrderTypeLimit, api.createReq.orderType)
	require.Equal(t, "19000", api.createReq.price)
	require.Equal(t, "NEW", order.Status)
}

func TestPlaceOrderWrapsAPIError(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("insufficient balance")}
	client := newTestClient(api)

	_, err := client.PlaceMarketOrder(context.Background(), "BTCUSDT", SideBuy, decimal.NewFromInt(1))
	var exchangeErr *Error
	require.ErrorAs(t, err, &exchangeErr)
	require.Equal(t, "place market order", exchangeErr.Op)
}

func TestCancelOrder(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(api)

	require.NoError(t, client.CancelOrder(context.Background(), "BTCUSDT", 42))
	require.Equal(t, int64(42), api.cancelledID)

	api.cancelErr = errors.New("unknown order")
	err := client.CancelOrder(context.Background(), "BTCUSDT", 43)
	var exchangeErr *Error
	require.ErrorAs(t, err, &exchangeErr)
}

func TestSymbolInfoParsesFilters(t *testing.T) {
	api := &fakeAPI{exchangeInfo: &binance.ExchangeInfo{Symbols: []binance.Symbol{{
		Symbol:     "ETHUSDT",
		Status:     "TRADING",
		BaseAsset:  "ETH",
		QuoteAsset: "USDT",
		Filters: []map[string]interface{}{
			{"filterType": "PRICE_FILTER", "tickSize": "0.01"},
			{"filterType": "LOT_SIZE", "minQty": "0.0001", "stepSize": "0.0001"},
			{"filterType": "MIN_NOTIONAL", "minNotional": "10.00"},
		},
	}}}}
	client := newTestClient(api)

	info, err := client.SymbolInfo(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	require.Equal(t, "ETH", info.BaseAsset)
	require.Equal(t, "USDT", info.QuoteAsset)
	require.True(t, info.IsLive)
	require.True(t, info.MinQty.Equal(decimal.RequireFromString("0.0001")))
	require.True(t, info.StepSize.Equal(decimal.RequireFromString("0.0001")))
	require.True(t, info.MinNotional.Equal(decimal.RequireFromString("10.00")))
	require.True(t, info.TickSize.Equal(decimal.RequireFromString("0.01")))
}

func TestSymbolInfoCaches(t *testing.T) {
	api := &fakeAPI{exchangeInfo: &binance.ExchangeInfo{Symbols: []binance.Symbol{{
		Symbol: "BTCUSDT", Status: "TRADING", BaseAsset: "BTC", QuoteAsset: "USDT",
	}}}}
	client := newTestClient(api)

	_, err := client.SymbolInfo(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	_, err = client.SymbolInfo(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, 1, api.infoCallCount)
}

func TestSymbolInfoUnknownSymbol(t *testing.T) {
	api := &fakeAPI{exchangeInfo: &binance.ExchangeInfo{}}
	client := newTestClient(api)

	_, err := client.SymbolInfo(context.Background(), "NOPEUSDT")
	var exchangeErr *Error
	require.ErrorAs(t, err, &exchangeErr)
}
