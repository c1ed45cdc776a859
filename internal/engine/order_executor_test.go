package engine

import (
	"context"
	"errors"
	"testing"

	"pullback-bot/internal/types"
)

func sampleOrder() types.SizedOrder {
	return types.SizedOrder{
		Symbol: "ETHUSDT",
		Side:   types.SideLong,
		Entry:  100,
		Stop:   97.5,
		TP:     105.5,
		Amount: 40,
	}
}

func TestPlaceBracketHappyPath(t *testing.T) {
	exch := &fakeExchange{}
	oe := newOrderExecutor(exch)

	res, err := oe.placeBracket(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EntryOrderID != "ORD-entry" || res.StopOrderID != "ORD-stop" || res.TakeProfitOrderID != "ORD-take_profit" {
		t.Errorf("unexpected ids: %+v", res)
	}
	if res.Amount != 40 || res.EntryPrice != 100 {
		t.Errorf("unexpected fill fields: %+v", res)
	}

	if len(exch.placed) != 3 {
		t.Fatalf("expected 3 legs, got %d", len(exch.placed))
	}
	stop, tp := exch.placed[1], exch.placed[2]
	if stop.Side != "SELL" || stop.StopPrice != 97.5 || !stop.ReduceOnly {
		t.Errorf("bad stop leg: %+v", stop)
	}
	if tp.Side != "SELL" || tp.Price != 105.5 || !tp.ReduceOnly {
		t.Errorf("bad take-profit leg: %+v", tp)
	}
}

func TestPlaceBracketShortFlipsSides(t *testing.T) {
	exch := &fakeExchange{}
	oe := newOrderExecutor(exch)

	order := sampleOrder()
	order.Side = types.SideShort
	order.Stop = 102.5
	order.TP = 94.5
	if _, err := oe.placeBracket(context.Background(), order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exch.placed[0].Side != "SELL" {
		t.Errorf("short entry must sell, got %+v", exch.placed[0])
	}
	if exch.placed[1].Side != "BUY" || exch.placed[2].Side != "BUY" {
		t.Errorf("short protective legs must buy, got %+v %+v", exch.placed[1], exch.placed[2])
	}
}

func TestPlaceBracketEntryRejected(t *testing.T) {
	exch := &fakeExchange{failOrder: func(req types.OrderReq) error {
		if req.Type == types.OrderMarket {
			return errors.New("insufficient margin")
		}
		return nil
	}}
	oe := newOrderExecutor(exch)

	_, err := oe.placeBracket(context.Background(), sampleOrder())
	if err == nil {
		t.Fatal("expected entry rejection")
	}
	var pErr *ProtectionError
	if errors.As(err, &pErr) {
		t.Fatal("entry rejection must not be a protection error")
	}
	if len(exch.placed) != 0 {
		t.Errorf("no protective leg may follow a rejected entry, got %d", len(exch.placed))
	}
}

func TestPlaceBracketBothProtectiveLegsFail(t *testing.T) {
	exch := &fakeExchange{failOrder: func(req types.OrderReq) error {
		if req.Type != types.OrderMarket {
			return errors.New("price out of bounds")
		}
		return nil
	}}
	oe := newOrderExecutor(exch)

	res, err := oe.placeBracket(context.Background(), sampleOrder())
	if res != nil {
		t.Fatal("partial bracket must not produce a result")
	}
	var pErr *ProtectionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected ProtectionError, got %v", err)
	}
	if pErr.EntryOrderID != "ORD-entry" {
		t.Errorf("expected entry order id, got %q", pErr.EntryOrderID)
	}
	if len(pErr.Legs) != 2 || pErr.Legs[0] != "stop" || pErr.Legs[1] != "take_profit" {
		t.Errorf("expected both legs recorded, got %v", pErr.Legs)
	}
	if pErr.Unwrap() == nil {
		t.Error("expected wrapped leg errors")
	}
}
