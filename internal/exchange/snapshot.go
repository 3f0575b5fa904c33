package exchange

import (
	"benthic/internal/benthicerr"
	"benthic/internal/book"
	"benthic/internal/decimal"
	"benthic/internal/margin"
	"benthic/internal/market"
)

// AssetView is a read-only view of one of a trader's sub-accounts.
type AssetView struct {
	Asset       market.Asset
	LongClosed  decimal.Decimal
	LongOpen    decimal.Decimal
	ShortClosed decimal.Decimal
	ShortOpen   decimal.Decimal
	LongLots    []*margin.Lot
	ShortLots   []*margin.Lot
}

// AccountView is a read-only view of a trader's whole ledger.
type AccountView struct {
	Trader market.TraderID
	Assets map[market.Asset]AssetView
}

// SnapshotAccount returns a point-in-time, read-only copy of a trader's
// ledger. It is never observed mid-placement: the execution policy runs to
// completion before any caller regains control.
func (ex *Exchange) SnapshotAccount(trader market.TraderID) (AccountView, error) {
	acc, err := ex.ledger.Lookup(trader)
	if err != nil {
		return AccountView{}, benthicerr.Newf(benthicerr.UnknownTrader, "trader %d", trader)
	}
	view := AccountView{Trader: trader, Assets: make(map[market.Asset]AssetView)}
	for sym, aa := range acc.AssetAccounts() {
		longLots, shortLots := aa.Long.Lots(), aa.Short.Lots()
		for i, l := range longLots {
			c := *l
			longLots[i] = &c
		}
		for i, l := range shortLots {
			c := *l
			shortLots[i] = &c
		}
		view.Assets[sym] = AssetView{
			Asset:       sym,
			LongClosed:  aa.Long.ClosedQuantity,
			LongOpen:    aa.Long.OpenQuantity,
			ShortClosed: aa.Short.ClosedQuantity,
			ShortOpen:   aa.Short.OpenQuantity,
			LongLots:    longLots,
			ShortLots:   shortLots,
		}
	}
	return view, nil
}

// DepthView is a read-only view of an instrument's resting liquidity.
type DepthView struct {
	Instrument market.Instrument
	Bids       []book.DepthLevel
	Asks       []book.DepthLevel
}

// SnapshotDepth returns up to levels price rows per side, best first.
func (ex *Exchange) SnapshotDepth(instr market.Instrument, levels int) (DepthView, error) {
	bk, ok := ex.books[instr]
	if !ok {
		return DepthView{}, benthicerr.New(benthicerr.UnknownInstrument, instr.String())
	}
	bids, asks := bk.Depth(levels)
	return DepthView{Instrument: instr, Bids: bids, Asks: asks}, nil
}
