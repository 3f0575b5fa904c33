package margin

import "errors"

// ErrInsufficientFunds is returned by Reserve when a delivering reservation
// would exceed the trader's available balance.
var ErrInsufficientFunds = errors.New("margin: insufficient funds")

// ErrUnknownTrader is returned when an operation names a trader with no
// open account. Accounts are opened implicitly only by Deposit.
var ErrUnknownTrader = errors.New("margin: unknown trader")
