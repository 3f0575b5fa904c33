// Package exec is the execution policy: the single sequencer that places
// an order across a book and a ledger atomically, per
// original_source/src/execution_policy.rs's ExecutionPolicy trait,
// generalized from its no-op ExecuteAllways to the full reserve/match/
// realize/settle pipeline §4.4 describes.
package exec

import (
	"fmt"

	"benthic/internal/book"
	"benthic/internal/event"
	"benthic/internal/margin"
	"benthic/internal/market"
)

// ErrUnknownInstrument is returned when an instrument has no registered
// book.
var ErrUnknownInstrument = fmt.Errorf("exec: unknown instrument")

// Policy is the only component that mutates both a book and the ledger
// during a single placement, which is what makes a placement atomic:
// either both are updated consistently or neither is.
type Policy struct {
	ledger *margin.Ledger
	books  map[market.Instrument]*book.OrderBook
	sink   event.Sink
}

func New(ledger *margin.Ledger, books map[market.Instrument]*book.OrderBook, sink event.Sink) *Policy {
	return &Policy{ledger: ledger, books: books, sink: sink}
}

// PlaceOrder runs the five-step sequence in §4.4: pre-reserve, promise,
// match, realize both sides per fill, settle the residual. A reservation
// failure at step 1 rejects the order before any book or market
// observation — no events besides the returned error.
//
// Market orders carry their reservation reference price in o.Limit, set by
// the caller (internal/exchange), per the open question in the design
// notes: this implementation requires a caller-supplied reference price
// rather than deriving one from a book-depth-weighted average. Policy
// reserves at o.Limit as given; internal/exchange rejects a zero price
// before the order reaches here.
func (p *Policy) PlaceOrder(o *market.Order) error {
	bk, ok := p.books[o.Instr]
	if !ok {
		return ErrUnknownInstrument
	}

	if err := p.ledger.Reserve(o.Trader, o.Instr, o.Side, o.Original, o.Limit); err != nil {
		return err
	}

	p.sink.OnPromise(event.Promise{Order: o})

	fills := bk.Place(o)

	if o.Status == market.Working {
		p.emitDepth(bk, o)
	}

	for _, f := range fills {
		p.settleFill(o.Instr, f)
	}

	switch o.Status {
	case market.Cancelled:
		if err := p.ledger.Release(o.Trader, o.Instr, o.Side, o.Remaining, o.Limit); err != nil {
			panic("exec: release on residual failed, ledger/book diverged: " + err.Error())
		}
		p.sink.OnCancel(event.Cancel{Order: o, Residual: o.Remaining, Reason: event.NotEnoughQuantity})
	case market.Working, market.Filled:
		// Working: the reservation for the unfilled remainder stays in
		// place while the order rests. Filled: every unit of the original
		// reservation was released fill-by-fill in settleFill.
	}
	return nil
}

// settleFill realizes one match on both parties' ledgers and emits the
// paired Execute events plus one Trade, exactly the order §4.4 specifies.
func (p *Policy) settleFill(instr market.Instrument, f book.Fill) {
	if err := p.ledger.Release(f.Aggressor.Trader, instr, f.Aggressor.Side, f.Quantity, f.Aggressor.Limit); err != nil {
		panic("exec: aggressor reservation release failed: " + err.Error())
	}
	if err := p.ledger.RealizeFill(f.Aggressor.Trader, instr, f.Aggressor.Side, f.Quantity, f.Price, f.Aggressor.ID); err != nil {
		panic("exec: aggressor realize failed: " + err.Error())
	}

	if err := p.ledger.Release(f.Resting.Trader, instr, f.Resting.Side, f.Quantity, f.Resting.Limit); err != nil {
		panic("exec: resting reservation release failed: " + err.Error())
	}
	if err := p.ledger.RealizeFill(f.Resting.Trader, instr, f.Resting.Side, f.Quantity, f.Price, f.Resting.ID); err != nil {
		panic("exec: resting realize failed: " + err.Error())
	}

	p.sink.OnExecute(event.Execute{Order: f.Aggressor, Role: event.Aggressor, Price: f.Price, Quantity: f.Quantity})
	p.sink.OnExecute(event.Execute{Order: f.Resting, Role: event.Book, Price: f.Price, Quantity: f.Quantity})
	p.sink.OnTrade(event.Trade{
		Instrument: instr,
		Aggressor:  f.Aggressor.ID,
		Resting:    f.Resting.ID,
		Price:      f.Price,
		Quantity:   f.Quantity,
	})
}

func (p *Policy) emitDepth(bk *book.OrderBook, o *market.Order) {
	bids, asks := bk.Depth(10)
	p.sink.OnDepth(event.Depth{
		Instrument: o.Instr,
		Order:      o,
		Bids:       convertLevels(bids),
		Asks:       convertLevels(asks),
	})
}

func convertLevels(in []book.DepthLevel) []event.DepthLevel {
	out := make([]event.DepthLevel, len(in))
	for i, l := range in {
		out[i] = event.DepthLevel{Price: l.Price, Quantity: l.Quantity}
	}
	return out
}

// CancelOrder routes a cancel to the book, then releases the residual
// reservation.
func (p *Policy) CancelOrder(o *market.Order) error {
	bk, ok := p.books[o.Instr]
	if !ok {
		return ErrUnknownInstrument
	}
	residual, err := bk.Cancel(o)
	if err != nil {
		return err
	}
	if err := p.ledger.Release(o.Trader, o.Instr, o.Side, residual, o.Limit); err != nil {
		panic("exec: release on cancel failed, ledger/book diverged: " + err.Error())
	}
	p.sink.OnCancel(event.Cancel{Order: o, Residual: residual, Reason: event.Requested})
	return nil
}
