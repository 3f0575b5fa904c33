// Package margin is the margin ledger: trader accounts, per-asset
// sub-accounts, Long/Short sides, and FIFO lots, grounded on
// original_source/src/margin.rs's MarginSide/MarginAssetAccount/
// MarginTradingAccount, simplified to the three primitives the execution
// policy needs: Reserve, Realize, Release.
package margin

import (
	"fmt"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

// Account is one trader's ledger: a map of asset to that asset's sub-account.
type Account struct {
	Trader market.TraderID
	assets map[market.Asset]*AssetAccount
}

func (a *Account) asset(sym market.Asset) *AssetAccount {
	aa, ok := a.assets[sym]
	if !ok {
		aa = newAssetAccount(sym)
		a.assets[sym] = aa
	}
	return aa
}

// AssetAccounts returns every sub-account the trader has touched, keyed by
// asset, for read-only snapshotting.
func (a *Account) AssetAccounts() map[market.Asset]*AssetAccount {
	return a.assets
}

// Ledger owns every trader's Account. It is the sole mutator of accounts,
// sub-accounts, sides, and lots, per the ownership rule in the data model.
type Ledger struct {
	accounts map[market.TraderID]*Account
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[market.TraderID]*Account)}
}

// Lookup returns the trader's account, or ErrUnknownTrader if none has been
// opened (accounts open implicitly only via Deposit).
func (l *Ledger) Lookup(trader market.TraderID) (*Account, error) {
	acc, ok := l.accounts[trader]
	if !ok {
		return nil, ErrUnknownTrader
	}
	return acc, nil
}

func (l *Ledger) openAccount(trader market.TraderID) *Account {
	acc, ok := l.accounts[trader]
	if !ok {
		acc = &Account{Trader: trader, assets: make(map[market.Asset]*AssetAccount)}
		l.accounts[trader] = acc
	}
	return acc
}

// Deposit is a synthetic order that bypasses matching and directly opens a
// Long lot at the caller-supplied reference price (deposits have no
// market-determined price).
func (l *Ledger) Deposit(trader market.TraderID, asset market.Asset, qty, referencePrice decimal.Decimal) error {
	acc := l.openAccount(trader)
	return acc.asset(asset).Long.openLot(qty, referencePrice, market.OrderID{})
}

// Reserve increases open_quantity on the side of each leg of instr that the
// order commits to: a Buy acquires the base (Long, no balance check) and
// commits to deliver qty*price of quote (Short, balance-checked); a Sell
// is the mirror image. Reservation is all-or-nothing: if the delivering
// leg fails, nothing is left reserved.
func (l *Ledger) Reserve(trader market.TraderID, instr market.Instrument, side market.Side, qty, price decimal.Decimal) error {
	acc, err := l.Lookup(trader)
	if err != nil {
		return err
	}
	quoteAmt, err := decimal.Mul(qty, price)
	if err != nil {
		return fmt.Errorf("margin: reserve: %w", err)
	}
	base := acc.asset(instr.Base)
	quote := acc.asset(instr.Quote)

	switch side {
	case market.Buy:
		if err := quote.reserveDeliver(quoteAmt); err != nil {
			return err
		}
		if err := base.reserveAcquire(qty); err != nil {
			_ = quote.Short.release(quoteAmt)
			return err
		}
	case market.Sell:
		if err := base.reserveDeliver(qty); err != nil {
			return err
		}
		if err := quote.reserveAcquire(quoteAmt); err != nil {
			_ = base.Short.release(qty)
			return err
		}
	}
	return nil
}

// Release decreases open_quantity on both legs by the residual of a
// cancelled or exhausted working order.
func (l *Ledger) Release(trader market.TraderID, instr market.Instrument, side market.Side, qty, price decimal.Decimal) error {
	acc, err := l.Lookup(trader)
	if err != nil {
		return err
	}
	quoteAmt, err := decimal.Mul(qty, price)
	if err != nil {
		return fmt.Errorf("margin: release: %w", err)
	}
	base := acc.asset(instr.Base)
	quote := acc.asset(instr.Quote)

	switch side {
	case market.Buy:
		if err := base.Long.release(qty); err != nil {
			return err
		}
		return quote.Short.release(quoteAmt)
	case market.Sell:
		if err := base.Short.release(qty); err != nil {
			return err
		}
		return quote.Long.release(quoteAmt)
	}
	return nil
}

// RealizeFill closes lots FIFO on both legs for a single match and opens
// the remainder on the entering side, per the sign rule (Buy enters
// base.Long and quote.Short; Sell enters base.Short and quote.Long). It
// only mutates position lots; callers must separately Release each
// party's own reservation at the rate that party reserved at (see Release).
func (l *Ledger) RealizeFill(trader market.TraderID, instr market.Instrument, side market.Side, qty, price decimal.Decimal, origin market.OrderID) error {
	acc, err := l.Lookup(trader)
	if err != nil {
		return err
	}
	quoteAmt, err := decimal.Mul(qty, price)
	if err != nil {
		return fmt.Errorf("margin: realize: %w", err)
	}
	base := acc.asset(instr.Base)
	quote := acc.asset(instr.Quote)

	switch side {
	case market.Buy:
		if err := base.Realize(Long, qty, price, origin); err != nil {
			return err
		}
		return quote.Realize(Short, quoteAmt, price, origin)
	case market.Sell:
		if err := base.Realize(Short, qty, price, origin); err != nil {
			return err
		}
		return quote.Realize(Long, quoteAmt, price, origin)
	}
	return nil
}
