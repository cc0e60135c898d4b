package exchange

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"binbot/internal/model"
)

// SymbolInfo fetches the trading rules for one symbol, cached after the
// first lookup. The order paths do not consult these filters before
// submission; they exist for diagnostics.
func (c *Client) SymbolInfo(ctx context.Context, symbol string) (model.SymbolInfo, error) {
	c.mu.Lock()
	if info, ok := c.symbols[symbol]; ok {
		c.mu.Unlock()
		return info, nil
	}
	c.mu.Unlock()

	resp, err := c.api.ExchangeInfo(ctx, symbol)
	if err != nil {
		return model.SymbolInfo{}, wrap("symbol info", err)
	}

	for _, s := range resp.Symbols {
		if s.Symbol != symbol {
			continue
		}
		info, err := symbolInfoFromBinance(s)
		if err != nil {
			return model.SymbolInfo{}, wrap("symbol info", err)
		}
		c.mu.Lock()
		c.symbols[symbol] = info
		c.mu.Unlock()
		return info, nil
	}

	return model.SymbolInfo{}, wrap("symbol info", fmt.Errorf("symbol %s not found in exchange info", symbol))
}

func symbolInfoFromBinance(s binance.Symbol) (model.SymbolInfo, error) {
	info := model.SymbolInfo{
		Symbol:      s.Symbol,
		BaseAsset:   s.BaseAsset,
		QuoteAsset:  s.QuoteAsset,
		IsLive:      s.Status == "TRADING",
		MinQty:      decimal.Zero,
		StepSize:    decimal.Zero,
		MinNotional: decimal.Zero,
		TickSize:    decimal.Zero,
	}

	for _, filter := range s.Filters {
		filterType, _ := filter["filterType"].(string)
		switch filterType {
		case "LOT_SIZE":
			minQty, err := filterDecimal(filter, "minQty")
			if err != nil {
				return model.SymbolInfo{}, err
			}
			stepSize, err := filterDecimal(filter, "stepSize")
			if err != nil {
				return model.SymbolInfo{}, err
			}
			info.MinQty = minQty
			info.StepSize = stepSize
		case "MIN_NOTIONAL", "NOTIONAL":
			minNotional, err := filterDecimal(filter, "minNotional")
			if err != nil {
				return model.SymbolInfo{}, err
			}
			info.MinNotional = minNotional
		case "PRICE_FILTER":
			tickSize, err := filterDecimal(filter, "tickSize")
			if err != nil {
				return model.SymbolInfo{}, err
			}
			info.TickSize = tickSize
		}
	}

	return info, nil
}

func filterDecimal(filter map[string]interface{}, key string) (decimal.Decimal, error) {
	raw, ok := filter[key].(string)
	if !ok {
		// Absent fields default to zero, matching the exchange's own
		// behavior for filters that omit them.
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse filter %s %q: %w", key, raw, err)
	}
	return value, nil
}
