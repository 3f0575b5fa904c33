// Package event defines the five-callback capability set the core depends
// on to report user and market events, and a console sink that reproduces
// the original order_execution example's transcript. The core never
// assumes delivery is durable: it calls these synchronously and moves on.
package event

import (
	"benthic/internal/decimal"
	"benthic/internal/market"
)

// Promise is the acknowledgment that an order has been accepted and its
// margin reserved.
type Promise struct {
	Order *market.Order
}

// ExecuteRole distinguishes the two Execute events a single fill produces.
type ExecuteRole int

const (
	Aggressor ExecuteRole = iota
	Book
)

// Execute reports one side's leg of a fill.
type Execute struct {
	Order    *market.Order
	Role     ExecuteRole
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// CancelReason distinguishes a caller-initiated cancel from the
// informational residual cancel on IOC/Market orders.
type CancelReason int

const (
	Requested CancelReason = iota
	NotEnoughQuantity
)

// Cancel reports an order leaving the book, with the quantity that was
// cancelled.
type Cancel struct {
	Order    *market.Order
	Residual decimal.Decimal
	Reason   CancelReason
}

// DepthLevel is one row of a market-depth update.
type DepthLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Depth reports a change to an instrument's resting liquidity.
type Depth struct {
	Instrument market.Instrument
	Order      *market.Order
	Bids       []DepthLevel
	Asks       []DepthLevel
}

// Trade reports one match, independent of either party's own Execute view.
type Trade struct {
	Instrument market.Instrument
	Aggressor  market.OrderID
	Resting    market.OrderID
	Price      decimal.Decimal
	Quantity   decimal.Decimal
}

// Sink is the capability set the core depends on. Implementations are
// expected to be cheap and non-blocking.
type Sink interface {
	OnPromise(Promise)
	OnExecute(Execute)
	OnCancel(Cancel)
	OnDepth(Depth)
	OnTrade(Trade)
}
