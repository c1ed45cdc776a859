package risk

import (
	"errors"
	"testing"

	"pullback-bot/internal/types"
)

func TestSize_Reference(t *testing.T) {
	s := Sizer{Fraction: 0.01, MinNotional: 5}

	order, err := s.Size("ETHUSDT", types.SideLong, 10000, 100, 99, 102.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// riskAmount = 100, priceDiff = 1
	if order.Amount != 100 {
		t.Errorf("expected amount=100, got %v", order.Amount)
	}
	if order.Amount <= 0 {
		t.Error("amount must be positive")
	}
	if order.Symbol != "ETHUSDT" || order.Side != types.SideLong {
		t.Errorf("order identity not carried: %+v", order)
	}
}

func TestSize_DegenerateStop(t *testing.T) {
	s := Sizer{Fraction: 0.01}

	_, err := s.Size("ETHUSDT", types.SideLong, 10000, 100, 100, 102)
	if !errors.Is(err, ErrDegenerateStop) {
		t.Fatalf("expected ErrDegenerateStop, got %v", err)
	}
}

func TestSize_ZeroBalance(t *testing.T) {
	s := Sizer{Fraction: 0.01}

	_, err := s.Size("ETHUSDT", types.SideLong, 0, 100, 99, 102)
	if !errors.Is(err, ErrNoBalance) {
		t.Fatalf("expected ErrNoBalance, got %v", err)
	}
}

func TestSize_BelowMinNotional(t *testing.T) {
	// balance 10, risk 1% = 0.1, diff 1 -> amount 0.1, notional 10 < 100
	s := Sizer{Fraction: 0.01, MinNotional: 100}

	_, err := s.Size("ETHUSDT", types.SideLong, 10, 100, 99, 102)
	if !errors.Is(err, ErrBelowMinNotional) {
		t.Fatalf("expected ErrBelowMinNotional, got %v", err)
	}
}
