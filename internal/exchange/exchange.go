// Package exchange is the programmatic API surface (§6): new_exchange,
// deposit, place_order, cancel_order, and the two read-only snapshots. It
// is the order manager too — it assigns monotonic per-trader order ids and
// validates shape before handing the order to the execution policy.
package exchange

import (
	"errors"
	"fmt"

	"benthic/internal/benthicerr"
	"benthic/internal/book"
	"benthic/internal/decimal"
	"benthic/internal/event"
	"benthic/internal/exec"
	"benthic/internal/margin"
	"benthic/internal/market"
)

// Exchange owns every book and the one ledger, and is the sole entry point
// a caller uses to place orders, deposit, and read state.
type Exchange struct {
	ledger *margin.Ledger
	books  map[market.Instrument]*book.OrderBook
	policy *exec.Policy
	orders map[market.OrderID]*market.Order
	seq    map[market.TraderID]uint64
}

// New builds an Exchange with one book per instrument and routes every
// event through sink.
func New(instruments []market.Instrument, sink event.Sink) *Exchange {
	books := make(map[market.Instrument]*book.OrderBook, len(instruments))
	for _, instr := range instruments {
		books[instr] = book.NewOrderBook(instr)
	}
	ledger := margin.NewLedger()
	return &Exchange{
		ledger: ledger,
		books:  books,
		policy: exec.New(ledger, books, sink),
		orders: make(map[market.OrderID]*market.Order),
		seq:    make(map[market.TraderID]uint64),
	}
}

// Deposit is a synthetic order that bypasses the book and opens a lot
// directly, at a caller-supplied reference price. It is also how a
// trader's account comes into existence; place_order on an unknown trader
// fails with UnknownTrader (cancel_order of an id it never issued fails
// with OrderNotFound).
func (ex *Exchange) Deposit(trader market.TraderID, asset market.Asset, qty, referencePrice decimal.Decimal) error {
	if qty.IsZero() {
		return benthicerr.New(benthicerr.InvalidQuantity, "deposit quantity must be positive")
	}
	if referencePrice.IsZero() {
		return benthicerr.New(benthicerr.InvalidPrice, "deposit reference price must be positive")
	}
	if err := ex.ledger.Deposit(trader, asset, qty, referencePrice); err != nil {
		return translateErr(err)
	}
	return nil
}

// PlaceOrder validates shape, assigns the order an id, and routes it to the
// execution policy. price is required for Limit and IOC (the limit price)
// and for Market (the margin reservation reference price, per the open
// question resolved in internal/exec).
func (ex *Exchange) PlaceOrder(trader market.TraderID, instr market.Instrument, side market.Side, kind market.Kind, qty, price decimal.Decimal) (market.OrderID, error) {
	if _, ok := ex.books[instr]; !ok {
		return market.OrderID{}, benthicerr.New(benthicerr.UnknownInstrument, instr.String())
	}
	if qty.IsZero() {
		return market.OrderID{}, benthicerr.New(benthicerr.InvalidQuantity, "quantity must be positive")
	}
	if price.IsZero() {
		return market.OrderID{}, benthicerr.New(benthicerr.InvalidPrice, "price must be positive")
	}
	if _, err := ex.ledger.Lookup(trader); err != nil {
		return market.OrderID{}, benthicerr.Newf(benthicerr.UnknownTrader, "trader %d", trader)
	}

	id := ex.nextOrderID(trader)
	o := market.NewOrder(id, trader, instr, side, kind, price, qty)
	ex.orders[id] = o

	if err := ex.policy.PlaceOrder(o); err != nil {
		delete(ex.orders, id)
		return market.OrderID{}, translateErr(err)
	}
	return id, nil
}

// CancelOrder routes to the book, then releases the freed reservation.
func (ex *Exchange) CancelOrder(id market.OrderID) error {
	o, ok := ex.orders[id]
	if !ok || !o.Resting() {
		return benthicerr.Newf(benthicerr.OrderNotFound, "order %s", id)
	}
	if err := ex.policy.CancelOrder(o); err != nil {
		return translateErr(err)
	}
	return nil
}

func (ex *Exchange) nextOrderID(trader market.TraderID) market.OrderID {
	ex.seq[trader]++
	return market.OrderID{Trader: trader, Seq: ex.seq[trader]}
}

func translateErr(err error) error {
	switch {
	case errors.Is(err, margin.ErrInsufficientFunds):
		return benthicerr.New(benthicerr.InsufficientFunds, err.Error())
	case errors.Is(err, margin.ErrUnknownTrader):
		return benthicerr.New(benthicerr.UnknownTrader, err.Error())
	case errors.Is(err, book.ErrOrderNotFound):
		return benthicerr.New(benthicerr.OrderNotFound, err.Error())
	case errors.Is(err, decimal.ErrOverflow):
		return benthicerr.New(benthicerr.Overflow, err.Error())
	case errors.Is(err, exec.ErrUnknownInstrument):
		return benthicerr.New(benthicerr.UnknownInstrument, err.Error())
	default:
		return fmt.Errorf("exchange: %w", err)
	}
}
