package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/metrics"
	"pullback-bot/internal/types"
)

// ProtectionError means the entry filled but one or both protective
// legs were rejected: the position is live and unprotected. It carries
// the entry order id so the caller can act on the open exposure.
type ProtectionError struct {
	EntryOrderID string
	Legs         []string // which protective legs failed
	Err          error
}

func (e *ProtectionError) Error() string {
	return fmt.Sprintf("entry %s filled but protective legs failed (%s): %v",
		e.EntryOrderID, strings.Join(e.Legs, ","), e.Err)
}

func (e *ProtectionError) Unwrap() error { return e.Err }

// orderExecutor places the three legs of a bracket.
type orderExecutor struct {
	exch interfaces.Exchange
}

func newOrderExecutor(exch interfaces.Exchange) *orderExecutor {
	return &orderExecutor{exch: exch}
}

// placeBracket issues the market entry, then the stop and take-profit
// on the opposite side. Once the entry fills both protective legs are
// attempted regardless of each other's outcome; any protective failure
// surfaces as a ProtectionError, distinct from an entry rejection.
func (oe *orderExecutor) placeBracket(ctx context.Context, order types.SizedOrder) (*types.ExecutionResult, error) {
	entrySide, closeSide := orderSides(order.Side)

	entry, err := oe.exch.PlaceOrder(ctx, types.OrderReq{
		Symbol: order.Symbol,
		Side:   entrySide,
		Type:   types.OrderMarket,
		Amount: order.Amount,
		Tag:    "entry",
	})
	if err != nil {
		return nil, fmt.Errorf("entry order rejected: %w", err)
	}
	metrics.OrdersTotal.WithLabelValues(order.Symbol, "entry").Inc()
	logger.Debug(ctx, "Entry filled",
		"symbol", order.Symbol, "order_id", entry.OrderID, "amount", order.Amount)

	var failedLegs []string
	var legErrs []error

	stop, err := oe.exch.PlaceOrder(ctx, types.OrderReq{
		Symbol:     order.Symbol,
		Side:       closeSide,
		Type:       types.OrderStopMarket,
		Amount:     order.Amount,
		StopPrice:  order.Stop,
		ReduceOnly: true,
		Tag:        "stop",
	})
	if err != nil {
		failedLegs = append(failedLegs, "stop")
		legErrs = append(legErrs, fmt.Errorf("stop leg: %w", err))
	} else {
		metrics.OrdersTotal.WithLabelValues(order.Symbol, "stop").Inc()
	}

	tp, err := oe.exch.PlaceOrder(ctx, types.OrderReq{
		Symbol:     order.Symbol,
		Side:       closeSide,
		Type:       types.OrderLimit,
		Amount:     order.Amount,
		Price:      order.TP,
		ReduceOnly: true,
		Tag:        "take_profit",
	})
	if err != nil {
		failedLegs = append(failedLegs, "take_profit")
		legErrs = append(legErrs, fmt.Errorf("take-profit leg: %w", err))
	} else {
		metrics.OrdersTotal.WithLabelValues(order.Symbol, "take_profit").Inc()
	}

	if len(failedLegs) > 0 {
		return nil, &ProtectionError{
			EntryOrderID: entry.OrderID,
			Legs:         failedLegs,
			Err:          errors.Join(legErrs...),
		}
	}

	return &types.ExecutionResult{
		EntryOrderID:      entry.OrderID,
		StopOrderID:       stop.OrderID,
		TakeProfitOrderID: tp.OrderID,
		Amount:            order.Amount,
		EntryPrice:        order.Entry,
	}, nil
}

// orderSides maps a position side to the venue sides of the entry and
// the protective legs.
func orderSides(side string) (entry, closing string) {
	if side == types.SideShort {
		return "SELL", "BUY"
	}
	return "BUY", "SELL"
}
