// Command benthic-example runs the canonical deposit-then-trade walkthrough
// in-process against internal/exchange, printing the announce-then-place
// lines and a per-trader portfolio table after each scenario. Grounded in
// the original's execute_orders/print_portfolio closures (announce the
// order, place it, then dump every account), rendered here with
// tablewriter instead of the original's hand-rolled column formatter.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"

	"benthic/internal/decimal"
	"benthic/internal/event"
	"benthic/internal/exchange"
	"benthic/internal/market"
)

func must(d decimal.Decimal, err error) decimal.Decimal {
	if err != nil {
		panic(err)
	}
	return d
}

func parse(s string) decimal.Decimal {
	return must(decimal.Parse(s))
}

func main() {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	instruments := []market.Instrument{
		{Base: "BTC", Quote: "USDT"},
		{Base: "ETH", Quote: "USDT"},
		{Base: "BTC", Quote: "ETH"},
	}
	ex := exchange.New(instruments, event.NewConsoleSink(log))

	const (
		trader1001 = market.TraderID(1001)
		trader1002 = market.TraderID(1002)
	)

	fmt.Println("=== deposits ===")
	deposit(ex, trader1001, "BTC", "2", "50000")
	deposit(ex, trader1002, "ETH", "20", "4000")
	printPortfolios(ex, trader1001, trader1002)

	fmt.Println("=== S1: crossing trade with a resting remainder ===")
	place(ex, trader1001, "BTC", "USDT", market.Buy, market.Limit, "1.0", "50000")
	place(ex, trader1001, "BTC", "ETH", market.Sell, market.Limit, "1.0", "12.5")
	place(ex, trader1002, "BTC", "ETH", market.Buy, market.Limit, "0.5", "12.5")
	printPortfolios(ex, trader1001, trader1002)

	fmt.Println("=== S2: a non-crossing limit order rests without a trade ===")
	place(ex, trader1002, "BTC", "ETH", market.Buy, market.Limit, "1.0", "12.0")
	printPortfolios(ex, trader1001, trader1002)

	fmt.Println("=== S3: a crossing buy at 14.0 is rejected: 1002 holds 13.75 ETH, 12 of it reserved by its resting S2 bid ===")
	place(ex, trader1002, "BTC", "ETH", market.Buy, market.Limit, "1.0", "14.0")
	printPortfolios(ex, trader1001, trader1002)

	fmt.Println("=== S4: a crossing buy at 15.0 is rejected for the same reason ===")
	place(ex, trader1002, "BTC", "ETH", market.Buy, market.Limit, "1.0", "15.0")
	printPortfolios(ex, trader1001, trader1002)
}

func deposit(ex *exchange.Exchange, trader market.TraderID, asset market.Asset, qty, refPrice string) {
	fmt.Printf("User ---> Deposit(trader=%d, asset=%s, qty=%s, ref=%s)\n", trader, asset, qty, refPrice)
	if err := ex.Deposit(trader, asset, parse(qty), parse(refPrice)); err != nil {
		fmt.Printf("  rejected: %v\n", err)
	}
}

func place(ex *exchange.Exchange, trader market.TraderID, base, quote market.Asset, side market.Side, kind market.Kind, qty, price string) {
	instr := market.Instrument{Base: base, Quote: quote}
	fmt.Printf("User ---> Order(trader=%d, %s %s %s %s @ %s %s)\n", trader, side, kind, qty, instr, price, quote)
	id, err := ex.PlaceOrder(trader, instr, side, kind, parse(qty), parse(price))
	if err != nil {
		fmt.Printf("  rejected: %v\n", err)
		return
	}
	fmt.Printf("  accepted as order %s\n", id)
}

// printPortfolios renders each trader's per-asset long/short open and
// closed quantities, in the original's "Account (Open) Short | Long
// (Open)" spirit but as one table per trader.
func printPortfolios(ex *exchange.Exchange, traders ...market.TraderID) {
	for _, trader := range traders {
		view, err := ex.SnapshotAccount(trader)
		if err != nil {
			fmt.Printf("account %d: %v\n", trader, err)
			continue
		}

		assets := make([]market.Asset, 0, len(view.Assets))
		for sym := range view.Assets {
			assets = append(assets, sym)
		}
		sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })

		writer := tablewriter.NewWriter(os.Stdout)
		writer.SetHeader([]string{"asset", "short (closed)", "short (open)", "long (closed)", "long (open)", "lots"})
		for _, sym := range assets {
			a := view.Assets[sym]
			writer.Append([]string{
				string(sym),
				a.ShortClosed.String(),
				a.ShortOpen.String(),
				a.LongClosed.String(),
				a.LongOpen.String(),
				strconv.Itoa(len(a.LongLots) + len(a.ShortLots)),
			})
		}
		writer.SetCaption(true, fmt.Sprintf("account %d", trader))
		writer.Render()
	}
}
