package event

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ConsoleSink logs every event through zerolog at the console, in the
// "User <--- Promise(...)" / "Market <-- Trade(...)" style of the original
// example's decorator loggers.
type ConsoleSink struct {
	log zerolog.Logger
}

func NewConsoleSink(log zerolog.Logger) *ConsoleSink {
	return &ConsoleSink{log: log}
}

func (c *ConsoleSink) OnPromise(p Promise) {
	c.log.Info().
		Str("channel", "user").
		Str("event", "promise").
		Stringer("instrument", p.Order.Instr).
		Stringer("order", p.Order.ID).
		Msg(fmt.Sprintf("Promise(%s): qty=%s <- Order(%s:%s)",
			p.Order.Instr, p.Order.Remaining, p.Order.ID, p.Order.Side))
}

func (c *ConsoleSink) OnExecute(e Execute) {
	role := "Aggressor"
	if e.Role == Book {
		role = "Book"
	}
	c.log.Info().
		Str("channel", "user").
		Str("event", "execute").
		Stringer("order", e.Order.ID).
		Str("role", role).
		Msg(fmt.Sprintf("Execute(%s:%s): qty=%s @ %s <- Order(%s:%s)",
			e.Order.Instr, role, e.Quantity, e.Price, e.Order.ID, e.Order.Side))
}

func (c *ConsoleSink) OnCancel(ev Cancel) {
	reason := "requested"
	if ev.Reason == NotEnoughQuantity {
		reason = "not enough quantity"
	}
	c.log.Info().
		Str("channel", "user").
		Str("event", "cancel").
		Stringer("order", ev.Order.ID).
		Str("reason", reason).
		Msg(fmt.Sprintf("Cancel(%s): qty=%s <- Order(%s:%s) - Reason: %s",
			ev.Order.Instr, ev.Residual, ev.Order.ID, ev.Order.Side, reason))
}

func (c *ConsoleSink) OnDepth(d Depth) {
	c.log.Debug().
		Str("channel", "market").
		Str("event", "depth").
		Stringer("instrument", d.Instrument).
		Int("bids", len(d.Bids)).
		Int("asks", len(d.Asks)).
		Msg(fmt.Sprintf("Depth(%s): <- Order(%s:%s)", d.Instrument, d.Order.ID, d.Order.Side))
}

func (c *ConsoleSink) OnTrade(t Trade) {
	c.log.Info().
		Str("channel", "market").
		Str("event", "trade").
		Stringer("instrument", t.Instrument).
		Msg(fmt.Sprintf("Trade(%s): qty=%s @ %s <- Order(%s) x Order(%s)",
			t.Instrument, t.Quantity, t.Price, t.Aggressor, t.Resting))
}
