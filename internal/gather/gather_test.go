package gather

import (
	"testing"
	"time"
)

func TestAlpacaGathererName(t *testing.T) {
	dates := DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	g := NewAlpacaGatherer("key", "secret", "https://data.alpaca.markets",
		nil, []string{"AAPL"}, dates, 200)
	if got := g.Name(); got != "alpaca-daily" {
		t.Errorf("AlpacaGatherer.Name() = %q, want %q", got, "alpaca-daily")
	}
}
