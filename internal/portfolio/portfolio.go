// Package portfolio tracks cash and per-symbol positions for a single
// strategy and computes mark-to-market value.
package portfolio

import "fmt"

// Position is the holding in a single symbol. AvgPrice is the running-average
// cost of the shares currently held.
type Position struct {
	Symbol   string
	Quantity float64
	AvgPrice float64
}

// Portfolio owns a cash balance and one Position per tracked symbol. The
// position map is fully populated at construction, so the replay loop never
// inserts entries. All mutation goes through ApplyTrade; cash has no hard
// floor here, since preventing overdrafts is the engine's validation job.
type Portfolio struct {
	cash      float64
	positions map[string]*Position
}

// New creates a Portfolio with the given starting cash and a zero position
// for every symbol that will appear during the replay.
func New(initialCash float64, symbols []string) *Portfolio {
	positions := make(map[string]*Position, len(symbols))
	for _, sym := range symbols {
		positions[sym] = &Position{Symbol: sym}
	}
	return &Portfolio{
		cash:      initialCash,
		positions: positions,
	}
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Tracks reports whether the symbol was registered at construction.
func (p *Portfolio) Tracks(symbol string) bool {
	_, ok := p.positions[symbol]
	return ok
}

// Position returns a copy of the position for the given symbol. The symbol
// must be tracked.
func (p *Portfolio) Position(symbol string) Position {
	pos, ok := p.positions[symbol]
	if !ok {
		panic(fmt.Sprintf("portfolio: untracked symbol %q", symbol))
	}
	return *pos
}

// ApplyTrade mutates the portfolio for a validated, executed trade. A buy
// (quantity > 0) recomputes the position's average price as the
// quantity-weighted mean of the old holding and the new shares; a sell
// leaves the average price unchanged: the cost basis follows a
// running-average convention, not FIFO/LIFO. In both cases the position
// quantity moves by quantity and cash moves by -quantity*price.
func (p *Portfolio) ApplyTrade(symbol string, quantity, price float64) {
	pos, ok := p.positions[symbol]
	if !ok {
		panic(fmt.Sprintf("portfolio: untracked symbol %q", symbol))
	}

	if quantity > 0 {
		total := pos.AvgPrice*pos.Quantity + price*quantity
		pos.AvgPrice = total / (pos.Quantity + quantity)
	}

	pos.Quantity += quantity
	p.cash -= quantity * price
}

// Value returns cash plus the mark-to-market value of every held position.
// Every symbol with a non-zero quantity must be present in prices; a missing
// entry is a programming error, since the engine seeds a price for every
// tracked symbol before the first valuation.
func (p *Portfolio) Value(prices map[string]float64) float64 {
	total := p.cash
	for sym, pos := range p.positions {
		if pos.Quantity == 0 {
			continue
		}
		price, ok := prices[sym]
		if !ok {
			panic(fmt.Sprintf("portfolio: no current price for held symbol %q", sym))
		}
		total += pos.Quantity * price
	}
	return total
}
