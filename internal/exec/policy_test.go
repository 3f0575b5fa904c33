package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benthic/internal/book"
	"benthic/internal/decimal"
	"benthic/internal/event"
	"benthic/internal/margin"
	"benthic/internal/market"
)

type recordingSink struct {
	promises []event.Promise
	executes []event.Execute
	cancels  []event.Cancel
	depths   []event.Depth
	trades   []event.Trade
}

func (r *recordingSink) OnPromise(p event.Promise) { r.promises = append(r.promises, p) }
func (r *recordingSink) OnExecute(e event.Execute) { r.executes = append(r.executes, e) }
func (r *recordingSink) OnCancel(c event.Cancel)   { r.cancels = append(r.cancels, c) }
func (r *recordingSink) OnDepth(d event.Depth)     { r.depths = append(r.depths, d) }
func (r *recordingSink) OnTrade(t event.Trade)     { r.trades = append(r.trades, t) }

func dec(s string) decimal.Decimal {
	d, err := decimal.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

var btcUsdt = market.Instrument{Base: "BTC", Quote: "USDT"}

func newFixture() (*Policy, *margin.Ledger, *recordingSink) {
	ledger := margin.NewLedger()
	books := map[market.Instrument]*book.OrderBook{btcUsdt: book.NewOrderBook(btcUsdt)}
	sink := &recordingSink{}
	return New(ledger, books, sink), ledger, sink
}

func TestPlaceOrderUnknownInstrumentRejectsBeforeAnyEvent(t *testing.T) {
	p, _, sink := newFixture()
	o := market.NewOrder(market.OrderID{Trader: 1, Seq: 1}, 1, market.Instrument{Base: "X", Quote: "Y"}, market.Buy, market.Limit, dec("1"), dec("1"))

	err := p.PlaceOrder(o)
	assert.ErrorIs(t, err, ErrUnknownInstrument)
	assert.Empty(t, sink.promises)
}

func TestPlaceOrderReservationFailureEmitsNoEvents(t *testing.T) {
	p, ledger, sink := newFixture()
	require.NoError(t, ledger.Deposit(1001, "USDT", dec("1"), dec("1")))
	o := market.NewOrder(market.OrderID{Trader: 1001, Seq: 1}, 1001, btcUsdt, market.Buy, market.Limit, dec("50000"), dec("1"))

	err := p.PlaceOrder(o)
	assert.ErrorIs(t, err, margin.ErrInsufficientFunds)
	assert.Empty(t, sink.promises)
	assert.Empty(t, sink.executes)
}

func TestPlaceOrderNonCrossingPromisesAndRests(t *testing.T) {
	p, ledger, sink := newFixture()
	require.NoError(t, ledger.Deposit(1001, "USDT", dec("100000"), dec("1")))
	o := market.NewOrder(market.OrderID{Trader: 1001, Seq: 1}, 1001, btcUsdt, market.Buy, market.Limit, dec("50000"), dec("1"))

	require.NoError(t, p.PlaceOrder(o))
	require.Len(t, sink.promises, 1)
	assert.Equal(t, market.Working, o.Status)
	assert.Len(t, sink.depths, 1)
	assert.Empty(t, sink.trades)
}

func TestPlaceOrderFillReleasesBothPartiesAndEmitsPairedExecutes(t *testing.T) {
	p, ledger, sink := newFixture()
	require.NoError(t, ledger.Deposit(1001, "BTC", dec("10"), dec("50000")))
	require.NoError(t, ledger.Deposit(1002, "USDT", dec("1000000"), dec("1")))

	maker := market.NewOrder(market.OrderID{Trader: 1001, Seq: 1}, 1001, btcUsdt, market.Sell, market.Limit, dec("50000"), dec("1"))
	require.NoError(t, p.PlaceOrder(maker))

	taker := market.NewOrder(market.OrderID{Trader: 1002, Seq: 1}, 1002, btcUsdt, market.Buy, market.Limit, dec("50000"), dec("1"))
	require.NoError(t, p.PlaceOrder(taker))

	require.Len(t, sink.trades, 1)
	require.Len(t, sink.executes, 2)
	assert.Equal(t, market.Filled, taker.Status)
	assert.Equal(t, market.Filled, maker.Status)

	takerAcc, _ := ledger.Lookup(1002)
	assert.True(t, takerAcc.AssetAccounts()["BTC"].Long.OpenQuantity.IsZero(), "the aggressor's reservation is fully released on a complete fill")
	makerAcc, _ := ledger.Lookup(1001)
	assert.True(t, makerAcc.AssetAccounts()["BTC"].Short.OpenQuantity.IsZero())
}

func TestPlaceOrderIOCResidualReleasesAndCancels(t *testing.T) {
	p, ledger, sink := newFixture()
	require.NoError(t, ledger.Deposit(1001, "USDT", dec("1000000"), dec("1")))

	o := market.NewOrder(market.OrderID{Trader: 1001, Seq: 1}, 1001, btcUsdt, market.Buy, market.IOC, dec("50000"), dec("1"))
	require.NoError(t, p.PlaceOrder(o))

	assert.Equal(t, market.Cancelled, o.Status)
	require.Len(t, sink.cancels, 1)
	assert.True(t, sink.cancels[0].Residual.Cmp(dec("1")) == 0)

	acc, _ := ledger.Lookup(1001)
	assert.True(t, acc.AssetAccounts()["USDT"].Short.OpenQuantity.IsZero(), "an IOC's unfilled residual reservation must be released, not left dangling")
}

func TestCancelOrderReleasesResidual(t *testing.T) {
	p, ledger, sink := newFixture()
	require.NoError(t, ledger.Deposit(1001, "USDT", dec("1000000"), dec("1")))

	o := market.NewOrder(market.OrderID{Trader: 1001, Seq: 1}, 1001, btcUsdt, market.Buy, market.Limit, dec("50000"), dec("1"))
	require.NoError(t, p.PlaceOrder(o))

	require.NoError(t, p.CancelOrder(o))
	assert.Equal(t, market.Cancelled, o.Status)
	require.Len(t, sink.cancels, 1)
	assert.Equal(t, event.Requested, sink.cancels[0].Reason)

	acc, _ := ledger.Lookup(1001)
	assert.True(t, acc.AssetAccounts()["USDT"].Short.OpenQuantity.IsZero())
}
