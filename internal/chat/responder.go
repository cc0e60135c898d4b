// Package chat implements the account query responder: regex command
// matching over balances and open orders, with an optional LLM fallback
// for everything else.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"binbot/internal/logger"
	"binbot/internal/model"
)

const systemPrompt = "You are a helpful assistant for a Binance trading bot. " +
	"Your primary function is to answer questions about account balances and open orders. " +
	"If the user asks about something else, politely state that you can only help with account information. " +
	"Here is the user's query: "

const (
	goodbyeReply  = "Goodbye!"
	greetingReply = "Hello! How can I assist you with your Binance account today?"
	fallbackReply = "I'm sorry, I can only answer questions about your account balance and open orders. " +
		"Please try rephrasing your question."
	llmTroubleReply = "I'm sorry, I'm having trouble processing your request at the moment. " +
		"Please try again later."
)

var (
	balanceRe    = regexp.MustCompile(`(\w+) balance`)
	openOrdersRe = regexp.MustCompile(`open orders for (\w+)`)
)

// Account is the slice of the exchange client the responder reads from.
type Account interface {
	GetBalance(ctx context.Context, asset string) (model.Balance, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]model.Order, error)
}

// Responder answers account queries. The llm provider may be nil, in which
// case unmatched queries get a canned reply.
type Responder struct {
	account Account
	llm     Provider
	log     *logger.Logger
}

// NewResponder creates a responder.
func NewResponder(account Account, llm Provider, log *logger.Logger) *Responder {
	return &Responder{account: account, llm: llm, log: log}
}

// Process answers one query. Command matching runs first; only unmatched
// queries reach the LLM.
func (r *Responder) Process(ctx context.Context, query string) string {
	lower := strings.ToLower(query)

	switch {
	case strings.Contains(lower, "balance"):
		return r.balanceReply(ctx, lower)
	case strings.Contains(lower, "open orders") || strings.Contains(lower, "orders"):
		return r.openOrdersReply(ctx, lower)
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return greetingReply
	case strings.Contains(lower, "exit") || strings.Contains(lower, "quit"):
		return goodbyeReply
	default:
		return r.llmReply(ctx, query)
	}
}

func (r *Responder) balanceReply(ctx context.Context, lower string) string {
	match := balanceRe.FindStringSubmatch(lower)
	if match == nil {
		return "Please specify an asset for balance query (e.g., 'what is my BTC balance?')."
	}
	asset := strings.ToUpper(match[1])

	balance, err := r.account.GetBalance(ctx, asset)
	if err != nil {
		return fmt.Sprintf("Could not retrieve balance for %s. Error: %v", asset, err)
	}
	return fmt.Sprintf("Your %s balance is %s (free: %s, locked: %s)",
		balance.Asset, balance.Total(), balance.Free, balance.Locked)
}

func (r *Responder) openOrdersReply(ctx context.Context, lower string) string {
	symbol := ""
	if match := openOrdersRe.FindStringSubmatch(lower); match != nil {
		symbol = strings.ToUpper(match[1])
	}

	orders, err := r.account.GetOpenOrders(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("Could not retrieve open orders. Error: %v", err)
	}
	if len(orders) == 0 {
		return "You have no open orders."
	}

	lines := make([]string, 0, len(orders))
	for _, order := range orders {
		lines = append(lines, fmt.Sprintf(
			"Symbol: %s, ID: %d, Side: %s, Type: %s, Price: %s, Original Qty: %s, Executed Qty: %s, Status: %s",
			order.Symbol, order.OrderID, order.Side, order.Type,
			order.Price, order.OrigQty, order.ExecutedQty, order.Status))
	}
	return "Your open orders:\n" + strings.Join(lines, "\n")
}

func (r *Responder) llmReply(ctx context.Context, query string) string {
	if r.llm == nil {
		return fallbackReply
	}
	reply, err := r.llm.Complete(ctx, systemPrompt+query)
	if err != nil {
		r.log.Error("llm completion failed", zap.Error(err))
		return llmTroubleReply
	}
	return reply
}

// Run is the interactive loop: reads queries from in, writes replies to
// out, and returns when the user says goodbye, input ends, or ctx is done.
func (r *Responder) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Starting chat mode. Type 'exit' or 'quit' to end the chat.")

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		reply := r.Process(ctx, scanner.Text())
		fmt.Fprintf(out, "Bot: %s\n", reply)
		if reply == goodbyeReply {
			return nil
		}
	}
}
