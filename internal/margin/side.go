package margin

import (
	"fmt"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

// MarginSide is one side (Long or Short) of one asset sub-account: the net
// realized position (ClosedQuantity) plus the FIFO lots that compose it,
// and OpenQuantity, the sum reserved by working orders on this side.
type MarginSide struct {
	side           Side
	asset          market.Asset
	ClosedQuantity decimal.Decimal
	OpenQuantity   decimal.Decimal
	open           lotQueue
}

func newMarginSide(asset market.Asset, side Side) *MarginSide {
	return &MarginSide{asset: asset, side: side}
}

// reserve increases the reservation made by a newly placed working order.
func (s *MarginSide) reserve(qty decimal.Decimal) error {
	v, err := s.OpenQuantity.Add(qty)
	if err != nil {
		return fmt.Errorf("margin: reserve overflow: %w", err)
	}
	s.OpenQuantity = v
	return nil
}

// release decreases the reservation on cancel or on realization of the
// matched portion (the order's promise is consumed as it actually fills).
func (s *MarginSide) release(qty decimal.Decimal) error {
	v, err := s.OpenQuantity.Sub(qty)
	if err != nil {
		return fmt.Errorf("margin: release exceeds open quantity: %w", err)
	}
	s.OpenQuantity = v
	return nil
}

// closeFIFO drains qty from the oldest open lots first, reducing
// ClosedQuantity by the amount actually closed, and returns any remainder
// that this side's lots could not absorb (because it holds no position).
func (s *MarginSide) closeFIFO(qty decimal.Decimal) (decimal.Decimal, error) {
	remaining := qty
	for !remaining.IsZero() {
		lot := s.open.front()
		if lot == nil {
			break
		}
		closeQty := decimal.Min(remaining, lot.Quantity)

		var err error
		lot.Quantity, err = lot.Quantity.Sub(closeQty)
		if err != nil {
			return decimal.Zero, err
		}
		s.ClosedQuantity, err = s.ClosedQuantity.Sub(closeQty)
		if err != nil {
			return decimal.Zero, err
		}
		remaining, err = remaining.Sub(closeQty)
		if err != nil {
			return decimal.Zero, err
		}
		if lot.Quantity.IsZero() {
			s.open.popFront()
		}
	}
	return remaining, nil
}

// openLot appends a brand new lot for qty at price, growing ClosedQuantity.
func (s *MarginSide) openLot(qty, price decimal.Decimal, origin market.OrderID) error {
	v, err := s.ClosedQuantity.Add(qty)
	if err != nil {
		return err
	}
	s.ClosedQuantity = v
	s.open.pushBack(&Lot{Asset: s.asset, Side: s.side, Quantity: qty, Price: price, Origin: origin})
	return nil
}

// Lots returns the open lots oldest-first, for read-only snapshots.
func (s *MarginSide) Lots() []*Lot { return s.open.items() }
