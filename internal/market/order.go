package market

import "benthic/internal/decimal"

// Order is the book's unit of work. The identifying fields are immutable
// once constructed; Remaining and Status mutate as the order is matched and
// eventually terminate.
type Order struct {
	ID       OrderID
	Trader   TraderID
	Instr    Instrument
	Side     Side
	Kind     Kind
	Limit    decimal.Decimal // limit price for Limit/IOC; reservation reference price for Market
	Original decimal.Decimal

	Remaining decimal.Decimal
	Status    Status
}

// NewOrder constructs a Working order with Remaining == Original.
func NewOrder(id OrderID, trader TraderID, instr Instrument, side Side, kind Kind, limit, qty decimal.Decimal) *Order {
	return &Order{
		ID:        id,
		Trader:    trader,
		Instr:     instr,
		Side:      side,
		Kind:      kind,
		Limit:     limit,
		Original:  qty,
		Remaining: qty,
		Status:    Working,
	}
}

// FilledQuantity returns the quantity already matched away.
func (o *Order) FilledQuantity() decimal.Decimal {
	d, err := o.Original.Sub(o.Remaining)
	if err != nil {
		// Remaining can never exceed Original; a violation here is a bug in
		// the matching engine, not a recoverable condition.
		panic("market: order remaining exceeds original: " + err.Error())
	}
	return d
}

// Resting reports whether the order is still eligible to match (Working
// with non-zero remaining).
func (o *Order) Resting() bool {
	return o.Status == Working && !o.Remaining.IsZero()
}
