// Package md ingests Binance kline market data: one long-lived websocket
// subscription per (symbol, interval), normalized into closed bars.
package md

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"binbot/internal/logger"
	"binbot/internal/model"
)

// DefaultReconnectInterval is the fixed wait between reconnect attempts.
// There is deliberately no retry cap and no exponential growth: a sustained
// outage retries forever at this interval.
const DefaultReconnectInterval = 5 * time.Second

// BarHandler receives closed bars, strictly in arrival order. Invocations
// are serialized; the handler runs on the stream's worker goroutine.
type BarHandler func(model.Bar)

// WsKlineServeFunc matches binance.WsKlineServe so tests can inject a fake
// transport.
type WsKlineServeFunc func(symbol string, interval string, handler binance.WsKlineHandler, errHandler binance.ErrHandler) (doneC, stopC chan struct{}, err error)

// State is the connection state of a KlineStream.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateStopped      State = "stopped"
)

// KlineStream maintains one subscription to a Binance kline stream. Only
// final (closed) klines reach the handler; open klines and malformed
// messages are discarded. On unexpected disconnect the stream waits the
// reconnect interval and dials again, until Stop.
type KlineStream struct {
	// Serve and ReconnectInterval may be overridden before Start.
	Serve             WsKlineServeFunc
	ReconnectInterval time.Duration

	symbol   string
	interval string
	handler  BarHandler
	log      *logger.Logger

	mu       sync.Mutex
	state    State
	started  bool
	connStop chan struct{}
	quit     chan struct{}
	done     chan struct{}
}

// NewKlineStream creates a stream for the given symbol and interval.
func NewKlineStream(symbol, interval string, handler BarHandler, log *logger.Logger) *KlineStream {
	return &KlineStream{
		Serve:             binance.WsKlineServe,
		ReconnectInterval: DefaultReconnectInterval,
		symbol:            symbol,
		interval:          interval,
		handler:           handler,
		log:               log,
		state:             StateDisconnected,
	}
}

// State returns the current connection state.
func (s *KlineStream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the background worker. It returns an error if the stream
// was already started; it does not wait for the connection to establish.
func (s *KlineStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("kline stream already started")
	}
	s.started = true
	s.state = StateConnecting
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.run()
	return nil
}

// Stop moves the stream to its terminal state, closes the active connection
// if any, and returns only once the worker goroutine has exited. Safe to
// call more than once.
func (s *KlineStream) Stop() {
	s.mu.Lock()
	if !s.started {
		s.state = StateStopped
		s.mu.Unlock()
		return
	}
	if s.state != StateStopped {
		s.state = StateStopped
		close(s.quit)
		if s.connStop != nil {
			close(s.connStop)
			s.connStop = nil
		}
	}
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *KlineStream) run() {
	defer close(s.done)

	wait := backoff.NewConstantBackOff(s.ReconnectInterval)
	for {
		s.mu.Lock()
		if s.state == StateStopped {
			s.mu.Unlock()
			return
		}
		s.state = StateConnecting
		s.mu.Unlock()

		doneC, stopC, err := s.Serve(s.symbol, s.interval, s.onKline, s.onError)
		if err != nil {
			s.log.Warn("kline stream connect failed",
				zap.String("symbol", s.symbol),
				zap.String("interval", s.interval),
				zap.Duration("retry_in", s.ReconnectInterval),
				zap.Error(err))
			if !s.sleep(wait.NextBackOff()) {
				return
			}
			continue
		}

		s.mu.Lock()
		if s.state == StateStopped {
			s.mu.Unlock()
			close(stopC)
			return
		}
		s.state = StateConnected
		s.connStop = stopC
		s.mu.Unlock()

		s.log.Info("kline stream connected",
			zap.String("symbol", s.symbol),
			zap.String("interval", s.interval))

		<-doneC

		s.mu.Lock()
		s.connStop = nil
		stopped := s.state == StateStopped
		if !stopped {
			s.state = StateDisconnected
		}
		s.mu.Unlock()
		if stopped {
			return
		}

		s.log.Warn("kline stream disconnected",
			zap.String("symbol", s.symbol),
			zap.Duration("retry_in", s.ReconnectInterval))
		if !s.sleep(wait.NextBackOff()) {
			return
		}
	}
}

// sleep blocks the worker for the backoff interval; it returns false when
// the stream was stopped while waiting.
func (s *KlineStream) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.quit:
		return false
	case <-timer.C:
		return true
	}
}

func (s *KlineStream) onKline(event *binance.WsKlineEvent) {
	if event == nil || !event.Kline.IsFinal {
		return
	}
	bar, err := barFromKline(event.Kline)
	if err != nil {
		s.log.Warn("dropping malformed kline",
			zap.String("symbol", s.symbol),
			zap.Error(err))
		return
	}
	s.handler(bar)
}

func (s *KlineStream) onError(err error) {
	s.log.Warn("kline stream error",
		zap.String("symbol", s.symbol),
		zap.Error(err))
}

func barFromKline(k binance.WsKline) (model.Bar, error) {
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	closePrice, err := decimal.NewFromString(k.Close)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	volume, err := decimal.NewFromString(k.Volume)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}
	return model.Bar{
		Timestamp: k.StartTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}
