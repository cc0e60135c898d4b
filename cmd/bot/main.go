package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"binbot/internal/chat"
	"binbot/internal/chat/gemini"
	"binbot/internal/config"
	"binbot/internal/engine"
	"binbot/internal/exchange"
	"binbot/internal/logger"
	"binbot/internal/md"
	"binbot/internal/model"
	"binbot/internal/risk"
	"binbot/internal/strategy"
)

func main() {
	cmd := &cli.Command{
		Name:  "binbot",
		Usage: "Binance trading bot",
		Commands: []*cli.Command{
			{
				Name:  "trade",
				Usage: "Run the automated trading loop",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "symbol",
						Aliases:  []string{"s"},
						Usage:    "Trading pair, e.g. BTCUSDT",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   "Kline interval, e.g. 1m, 5m, 1h",
						Value:   "1m",
					},
					&cli.StringFlag{
						Name:  "quote",
						Usage: "Quote asset of the pair",
						Value: "USDT",
					},
					&cli.StringFlag{
						Name:  "initial-balance",
						Usage: "Account balance used for position sizing",
						Value: "10000",
					},
					&cli.StringFlag{
						Name:  "journal",
						Usage: "Path to the trade journal (ndjson)",
						Value: "journal.ndjson",
					},
				},
				Action: tradeAction,
			},
			{
				Name:   "chat",
				Usage:  "Interactive account query session",
				Action: chatAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func tradeAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	interval := cmd.String("interval")
	quoteAsset := cmd.String("quote")

	balance, err := decimal.NewFromString(cmd.String("initial-balance"))
	if err != nil {
		return fmt.Errorf("parse initial-balance: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zlog, err := logger.New()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = zlog.Sync()
	}()

	journal, err := engine.NewJournal(cmd.String("journal"))
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := journal.Close(); err != nil {
			zlog.Error("failed to close journal", zap.Error(err))
		}
	}()

	client := exchange.New(cfg.APIKey, cfg.APISecret, cfg.Testnet, zlog)
	if info, err := client.SymbolInfo(ctx, symbol); err != nil {
		zlog.Warn("could not fetch symbol info", zap.String("symbol", symbol), zap.Error(err))
	} else {
		zlog.Info("symbol info",
			zap.String("symbol", info.Symbol),
			zap.Bool("live", info.IsLive),
			zap.String("min_qty", info.MinQty.String()),
			zap.String("step_size", info.StepSize.String()),
			zap.String("min_notional", info.MinNotional.String()))
	}

	strat := strategy.NewRSIMACD(strategy.NewAnalyzer())
	sizer := risk.NewSizer(balance)
	eng := engine.New(symbol, quoteAsset, strat, sizer, client, journal, zlog)

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stream := md.NewKlineStream(symbol, interval, func(bar model.Bar) {
		eng.OnBar(runCtx, bar)
	}, zlog)

	zlog.Info("starting trading loop",
		zap.String("symbol", symbol),
		zap.String("interval", interval),
		zap.Bool("testnet", cfg.Testnet),
		zap.String("initial_balance", balance.String()))

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start kline stream: %w", err)
	}

	<-runCtx.Done()
	zlog.Info("shutdown signal received")
	stream.Stop()

	zlog.Info("bot shutdown complete")
	return nil
}

func chatAction(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zlog, err := logger.New()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = zlog.Sync()
	}()

	client := exchange.New(cfg.APIKey, cfg.APISecret, cfg.Testnet, zlog)

	var provider chat.Provider
	if cfg.GeminiAPIKey != "" {
		provider = gemini.New(cfg.GeminiAPIKey, "", "")
	} else {
		zlog.Warn("GEMINI_API_KEY not set, free-form queries will get a canned reply")
	}

	responder := chat.NewResponder(client, provider, zlog)

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return responder.Run(runCtx, os.Stdin, os.Stdout)
}
