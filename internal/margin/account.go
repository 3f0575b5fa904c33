package margin

import (
	"fmt"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

// AssetAccount is a trader's sub-account for a single asset: a Long side
// and a Short side. Invariant: at most one of Long.ClosedQuantity and
// Short.ClosedQuantity is non-zero at any instant.
type AssetAccount struct {
	Asset market.Asset
	Long  *MarginSide
	Short *MarginSide
}

func newAssetAccount(asset market.Asset) *AssetAccount {
	return &AssetAccount{
		Asset: asset,
		Long:  newMarginSide(asset, Long),
		Short: newMarginSide(asset, Short),
	}
}

func (a *AssetAccount) side(s Side) *MarginSide {
	if s == Long {
		return a.Long
	}
	return a.Short
}

// availableToDeliver returns the net realized position deliverable from the Short
// side: what is already held (Long.Closed - Short.Closed) minus what is
// already promised to other working orders (Short.Open). Only the
// delivering reservation (opening on Short) is checked against balance;
// acquiring (opening on Long) never needs a balance check, since the
// trader is receiving, not spending.
func (a *AssetAccount) availableToDeliver() (decimal.Decimal, error) {
	held, err := a.Long.ClosedQuantity.Sub(a.Short.ClosedQuantity)
	if err != nil {
		// Sub failing here means Short.Closed > Long.Closed: the trader is
		// already net short, so nothing is available to deliver.
		return decimal.Zero, nil
	}
	avail, err := held.Sub(a.Short.OpenQuantity)
	if err != nil {
		return decimal.Zero, nil
	}
	return avail, nil
}

// reserveDeliver increases Short.Open after checking available balance.
func (a *AssetAccount) reserveDeliver(qty decimal.Decimal) error {
	avail, err := a.availableToDeliver()
	if err != nil {
		return err
	}
	if avail.Cmp(qty) < 0 {
		return fmt.Errorf("%w: asset %s has %s available, needs %s", ErrInsufficientFunds, a.Asset, avail, qty)
	}
	return a.Short.reserve(qty)
}

// reserveAcquire increases Long.Open; acquiring never needs a balance
// check.
func (a *AssetAccount) reserveAcquire(qty decimal.Decimal) error {
	return a.Long.reserve(qty)
}

// Realize closes lots on the opposite side FIFO and opens any remainder on
// enteringSide, per the sign rule: Buy fills enter on Long, Sell fills
// enter on Short. price is the true match price, used for the new lot's
// cost basis; it does not touch either side's OpenQuantity — that
// reservation is released separately (see Ledger.Release), at the rate the
// order itself reserved at, since a resting order's match price can
// differ from an aggressor's own limit price (price improvement).
func (a *AssetAccount) Realize(enteringSide Side, qty, price decimal.Decimal, origin market.OrderID) error {
	entering := a.side(enteringSide)
	opposite := a.side(enteringSide.Opposite())
	remainder, err := opposite.closeFIFO(qty)
	if err != nil {
		return err
	}
	if !remainder.IsZero() {
		if err := entering.openLot(remainder, price, origin); err != nil {
			return err
		}
	}
	return nil
}
