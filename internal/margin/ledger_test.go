package margin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

var btcUsdt = market.Instrument{Base: "BTC", Quote: "USDT"}

func TestDepositOpensLongLot(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(1001, "BTC", dec("2"), dec("50000")))

	acc, err := l.Lookup(1001)
	require.NoError(t, err)
	lots := acc.asset("BTC").Long.Lots()
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Cmp(dec("2")) == 0)
	assert.True(t, acc.asset("BTC").Long.ClosedQuantity.Cmp(dec("2")) == 0)
}

func TestReserveUnknownTraderFails(t *testing.T) {
	l := NewLedger()
	err := l.Reserve(9999, btcUsdt, market.Buy, dec("1"), dec("100"))
	assert.ErrorIs(t, err, ErrUnknownTrader)
}

func TestReserveInsufficientFundsRollsBackBothLegs(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(1001, "USDT", dec("100"), dec("1")))

	err := l.Reserve(1001, btcUsdt, market.Buy, dec("1"), dec("50000"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	acc, _ := l.Lookup(1001)
	assert.True(t, acc.asset("USDT").Short.OpenQuantity.IsZero(), "the delivering leg must be rolled back when the acquiring check never runs")
	assert.True(t, acc.asset("BTC").Long.OpenQuantity.IsZero())
}

func TestReserveBuyCommitsBothLegs(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(1001, "USDT", dec("100000"), dec("1")))

	require.NoError(t, l.Reserve(1001, btcUsdt, market.Buy, dec("1"), dec("50000")))

	acc, _ := l.Lookup(1001)
	assert.True(t, acc.asset("BTC").Long.OpenQuantity.Cmp(dec("1")) == 0)
	assert.True(t, acc.asset("USDT").Short.OpenQuantity.Cmp(dec("50000")) == 0)
}

func TestReleaseUndoesReserve(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(1001, "USDT", dec("100000"), dec("1")))
	require.NoError(t, l.Reserve(1001, btcUsdt, market.Buy, dec("1"), dec("50000")))

	require.NoError(t, l.Release(1001, btcUsdt, market.Buy, dec("1"), dec("50000")))

	acc, _ := l.Lookup(1001)
	assert.True(t, acc.asset("BTC").Long.OpenQuantity.IsZero())
	assert.True(t, acc.asset("USDT").Short.OpenQuantity.IsZero())
}

func TestRealizeFillOpensEnteringSideAtMatchPrice(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(1001, "USDT", dec("100000"), dec("1")))

	require.NoError(t, l.RealizeFill(1001, btcUsdt, market.Buy, dec("1"), dec("49000"), market.OrderID{Trader: 1001, Seq: 1}))

	acc, _ := l.Lookup(1001)
	lots := acc.asset("BTC").Long.Lots()
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Price.Cmp(dec("49000")) == 0, "the new lot's cost basis is the true match price")
	// The quote leg enters Short, but first closes the opposite (Long)
	// deposit lot FIFO: 100000 - 49000 leaves 51000 and nothing opens on Short.
	assert.Empty(t, acc.asset("USDT").Short.Lots())
	quoteLots := acc.asset("USDT").Long.Lots()
	require.Len(t, quoteLots, 1)
	assert.True(t, quoteLots[0].Quantity.Cmp(dec("51000")) == 0)
}

// TestPriceImprovementReservationBalances is the regression test for the
// design bug where releasing a reservation at the match price (rather than
// the rate the order itself reserved at) leaked open_quantity whenever an
// aggressor's limit differed from the price it actually filled at.
func TestPriceImprovementReservationBalances(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(1002, "ETH", dec("100"), dec("1")))

	const reservedPrice = "14.0"
	const matchPrice = "12.5"
	qty := dec("0.5")

	require.NoError(t, l.Reserve(1002, market.Instrument{Base: "BTC", Quote: "ETH"}, market.Buy, qty, dec(reservedPrice)))
	require.NoError(t, l.RealizeFill(1002, market.Instrument{Base: "BTC", Quote: "ETH"}, market.Buy, qty, dec(matchPrice), market.OrderID{Trader: 1002, Seq: 1}))
	require.NoError(t, l.Release(1002, market.Instrument{Base: "BTC", Quote: "ETH"}, market.Buy, qty, dec(reservedPrice)))

	acc, _ := l.Lookup(1002)
	assert.True(t, acc.asset("BTC").Long.OpenQuantity.IsZero())
	assert.True(t, acc.asset("ETH").Short.OpenQuantity.IsZero(), "releasing at the order's own reserved rate must zero the reservation regardless of match-price variance")
}

func TestRealizeClosesOppositeSideFIFOBeforeOpeningEntering(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(1001, "BTC", dec("1"), dec("50000")))

	// Selling more than held on Long flips the account net short on the
	// remainder: Long.Closed drains to zero, then Short opens the excess.
	require.NoError(t, l.RealizeFill(1001, btcUsdt, market.Sell, dec("1.5"), dec("51000"), market.OrderID{Trader: 1001, Seq: 2}))

	acc, _ := l.Lookup(1001)
	assert.True(t, acc.asset("BTC").Long.ClosedQuantity.IsZero())
	assert.True(t, acc.asset("BTC").Short.ClosedQuantity.Cmp(dec("0.5")) == 0)
}

func TestLotFIFOOrder(t *testing.T) {
	s := newMarginSide("BTC", Long)
	require.NoError(t, s.openLot(dec("1"), dec("100"), market.OrderID{Seq: 1}))
	require.NoError(t, s.openLot(dec("1"), dec("200"), market.OrderID{Seq: 2}))

	remainder, err := s.closeFIFO(dec("1.5"))
	require.NoError(t, err)
	assert.True(t, remainder.IsZero())

	lots := s.Lots()
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Price.Cmp(dec("200")) == 0, "the oldest lot (price 100) must close first")
	assert.True(t, lots[0].Quantity.Cmp(dec("0.5")) == 0)
}
