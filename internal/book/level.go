package book

import (
	"container/list"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

// PriceLevel holds every Working order resting at a single price, in strict
// arrival order. A doubly linked list gives O(1) push-back and O(1) removal
// given an element handle, which is what the book's cancel index keeps.
type PriceLevel struct {
	Price  decimal.Decimal
	orders *list.List
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{Price: price, orders: list.New()}
}

func (l *PriceLevel) pushBack(o *market.Order) *list.Element {
	return l.orders.PushBack(o)
}

func (l *PriceLevel) front() *market.Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*market.Order)
}

func (l *PriceLevel) popFront() {
	l.orders.Remove(l.orders.Front())
}

func (l *PriceLevel) remove(elem *list.Element) {
	l.orders.Remove(elem)
}

func (l *PriceLevel) empty() bool {
	return l.orders.Len() == 0
}

// TotalQuantity sums the remaining quantity resting at this level.
func (l *PriceLevel) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for e := l.orders.Front(); e != nil; e = e.Next() {
		o := e.Value.(*market.Order)
		var err error
		total, err = total.Add(o.Remaining)
		if err != nil {
			panic("book: level quantity overflow: " + err.Error())
		}
	}
	return total
}
