package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewOrder(t *testing.T) {
	at := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

	o, err := NewOrder("AAPL", 100, 150.0, at)
	if err != nil {
		t.Fatalf("NewOrder returned error: %v", err)
	}
	if o.ID == "" {
		t.Error("NewOrder left ID empty")
	}
	if o.Status != OrderStatusPending {
		t.Errorf("new order Status = %q, want %q", o.Status, OrderStatusPending)
	}
	if o.Quantity != 100 || o.Price != 150.0 {
		t.Errorf("order fields = (%v, %v), want (100, 150)", o.Quantity, o.Price)
	}
	if !o.CreatedAt.Equal(at) {
		t.Errorf("order CreatedAt = %v, want %v", o.CreatedAt, at)
	}
}

func TestNewOrderRejectsNonPositivePrice(t *testing.T) {
	at := time.Now()
	for _, price := range []float64{0, -1.5} {
		_, err := NewOrder("AAPL", 10, price, at)
		if err == nil {
			t.Fatalf("NewOrder(price=%v) returned no error", price)
		}
		var oe *OrderError
		if !errors.As(err, &oe) {
			t.Errorf("NewOrder(price=%v) error type = %T, want *OrderError", price, err)
		}
	}
}

func TestHold(t *testing.T) {
	tick := Tick{Timestamp: time.Now(), Symbol: "MSFT", Price: 410.0}
	sig := Hold(tick)
	if sig.Action != ActionHold {
		t.Errorf("Hold signal Action = %q, want %q", sig.Action, ActionHold)
	}
	if sig.Symbol != "MSFT" || sig.Price != 410.0 {
		t.Errorf("Hold signal = %+v, want symbol/price carried over", sig)
	}
	if sig.Quantity != 0 {
		t.Errorf("Hold signal Quantity = %v, want 0", sig.Quantity)
	}
}

func TestErrorTypes(t *testing.T) {
	var err error = &OrderError{Reason: "not enough cash"}
	if err.Error() != "not enough cash" {
		t.Errorf("OrderError.Error() = %q", err.Error())
	}
	err = &ExecutionError{Reason: "market rejected order"}
	if err.Error() != "market rejected order" {
		t.Errorf("ExecutionError.Error() = %q", err.Error())
	}
}
