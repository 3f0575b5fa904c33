// Package book implements the per-instrument price-time priority limit
// order book and match engine. It is deliberately ignorant of margin: it
// only ever mutates Order.Remaining/Order.Status and produces a list of
// Fills for its caller (internal/exec) to realize against the ledger.
package book

import (
	"container/list"
	"errors"

	"github.com/tidwall/btree"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

// ErrOrderNotFound is returned by Cancel when the order is not resting
// (unknown, already filled, or already cancelled).
var ErrOrderNotFound = errors.New("book: order not found")

// Fill is one match between an aggressing order and a resting (maker)
// order. The trade price is always the resting order's price.
type Fill struct {
	Aggressor *market.Order
	Resting   *market.Order
	Price     decimal.Decimal
	Quantity  decimal.Decimal
}

type levels = btree.BTreeG[*PriceLevel]

type bookEntry struct {
	level *PriceLevel
	elem  *list.Element
}

// OrderBook is the two-sided book for a single instrument.
type OrderBook struct {
	instr market.Instrument
	bids  *levels // descending price
	asks  *levels // ascending price
	index map[market.OrderID]bookEntry
}

func NewOrderBook(instr market.Instrument) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.Cmp(b.Price) > 0
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.Cmp(b.Price) < 0
	})
	return &OrderBook{
		instr: instr,
		bids:  bids,
		asks:  asks,
		index: make(map[market.OrderID]bookEntry),
	}
}

func (b *OrderBook) ownSide(side market.Side) *levels {
	if side == market.Buy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) oppositeSide(side market.Side) *levels {
	if side == market.Buy {
		return b.asks
	}
	return b.bids
}

// crossable reports whether an aggressing order may trade against a resting
// level at levelPrice: Market orders cross unconditionally; Limit and IOC
// cross only at or better than their own limit.
func crossable(o *market.Order, levelPrice decimal.Decimal) bool {
	if o.Kind == market.Market {
		return true
	}
	if o.Side == market.Buy {
		return levelPrice.Cmp(o.Limit) <= 0
	}
	return levelPrice.Cmp(o.Limit) >= 0
}

// Place runs the match rule for o against the opposite side, then applies
// each kind's residual policy: Limit rests any leftover on its own side,
// Market and IOC cancel it. o.Remaining and o.Status are mutated in place;
// the returned Fills are in strict match order, ready for the caller to
// realize against the ledger one at a time.
func (b *OrderBook) Place(o *market.Order) []Fill {
	fills := b.match(o)

	switch o.Kind {
	case market.Limit:
		if o.Remaining.IsZero() {
			o.Status = market.Filled
		} else {
			o.Status = market.Working
			b.rest(o)
		}
	case market.Market, market.IOC:
		if o.Remaining.IsZero() {
			o.Status = market.Filled
		} else {
			o.Status = market.Cancelled
		}
	}
	return fills
}

func (b *OrderBook) match(o *market.Order) []Fill {
	var fills []Fill
	opposite := b.oppositeSide(o.Side)

	for !o.Remaining.IsZero() {
		level, ok := opposite.Min()
		if !ok || !crossable(o, level.Price) {
			break
		}
		for !o.Remaining.IsZero() {
			resting := level.front()
			if resting == nil {
				break
			}
			qty := decimal.Min(o.Remaining, resting.Remaining)

			var err error
			o.Remaining, err = o.Remaining.Sub(qty)
			if err != nil {
				panic("book: aggressor remaining underflow: " + err.Error())
			}
			resting.Remaining, err = resting.Remaining.Sub(qty)
			if err != nil {
				panic("book: resting remaining underflow: " + err.Error())
			}

			fills = append(fills, Fill{
				Aggressor: o,
				Resting:   resting,
				Price:     level.Price,
				Quantity:  qty,
			})

			if resting.Remaining.IsZero() {
				resting.Status = market.Filled
				level.popFront()
				delete(b.index, resting.ID)
			}
		}
		if level.empty() {
			opposite.Delete(level)
		}
	}
	return fills
}

func (b *OrderBook) rest(o *market.Order) {
	own := b.ownSide(o.Side)
	level, ok := own.Get(&PriceLevel{Price: o.Limit})
	if !ok {
		level = newPriceLevel(o.Limit)
		own.Set(level)
	}
	elem := level.pushBack(o)
	b.index[o.ID] = bookEntry{level: level, elem: elem}
}

// Cancel removes a Working order from the book, transitions it to
// Cancelled, and returns its residual (remaining) quantity.
func (b *OrderBook) Cancel(o *market.Order) (decimal.Decimal, error) {
	entry, ok := b.index[o.ID]
	if !ok {
		return decimal.Zero, ErrOrderNotFound
	}
	residual := o.Remaining
	entry.level.remove(entry.elem)
	delete(b.index, o.ID)
	if entry.level.empty() {
		b.ownSide(o.Side).Delete(entry.level)
	}
	o.Status = market.Cancelled
	return residual, nil
}

// DepthLevel is one row of a market-depth snapshot.
type DepthLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Depth returns up to n price levels per side, best first.
func (b *OrderBook) Depth(n int) (bids, asks []DepthLevel) {
	bids = snapshotSide(b.bids, n)
	asks = snapshotSide(b.asks, n)
	return
}

func snapshotSide(t *levels, n int) []DepthLevel {
	out := make([]DepthLevel, 0, n)
	t.Scan(func(l *PriceLevel) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, DepthLevel{Price: l.Price, Quantity: l.TotalQuantity()})
		return true
	})
	return out
}

// BestBid and BestAsk report the top of book, if any.
func (b *OrderBook) BestBid() (decimal.Decimal, bool) {
	l, ok := b.bids.Min()
	if !ok {
		return decimal.Zero, false
	}
	return l.Price, true
}

func (b *OrderBook) BestAsk() (decimal.Decimal, bool) {
	l, ok := b.asks.Min()
	if !ok {
		return decimal.Zero, false
	}
	return l.Price, true
}

func (b *OrderBook) Instrument() market.Instrument { return b.instr }
