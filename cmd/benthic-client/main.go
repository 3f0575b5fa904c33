// Command benthic-client sends a single place or cancel request to a
// running benthicd and prints the response, adapted from the teacher's
// cmd/client/client.go flag surface, narrowed to Benthic's order shape.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/google/uuid"

	"benthic/internal/decimal"
	"benthic/internal/market"
	"benthic/internal/wire"
)

func main() {
	addr := flag.String("server", "127.0.0.1:9001", "address of the benthicd daemon")
	action := flag.String("action", "place", "'place' or 'cancel'")
	trader := flag.Uint64("trader", 1001, "trader id")
	base := flag.String("base", "BTC", "base asset")
	quote := flag.String("quote", "USDT", "quote asset")
	sideStr := flag.String("side", "buy", "'buy' or 'sell'")
	kindStr := flag.String("kind", "limit", "'limit', 'market', or 'ioc'")
	price := flag.String("price", "0", "limit price, or the reservation reference price for a market order")
	qty := flag.String("qty", "1", "quantity")
	seq := flag.Uint64("seq", 0, "order sequence number, for -action=cancel")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("connect to %s: %v", *addr, err)
	}
	defer conn.Close()

	var req interface{ Encode() []byte }
	switch strings.ToLower(*action) {
	case "place":
		side := market.Buy
		if strings.ToLower(*sideStr) == "sell" {
			side = market.Sell
		}
		kind := market.Limit
		switch strings.ToLower(*kindStr) {
		case "market":
			kind = market.Market
		case "ioc":
			kind = market.IOC
		}
		p, err := decimal.Parse(*price)
		if err != nil {
			log.Fatalf("invalid price: %v", err)
		}
		q, err := decimal.Parse(*qty)
		if err != nil {
			log.Fatalf("invalid qty: %v", err)
		}
		req = wire.NewOrderRequest{
			CorrelationID: uuid.New(),
			Trader:        market.TraderID(*trader),
			Instrument:    market.Instrument{Base: market.Asset(*base), Quote: market.Asset(*quote)},
			Side:          side,
			Kind:          kind,
			Price:         p,
			Quantity:      q,
		}
	case "cancel":
		req = wire.CancelOrderRequest{
			CorrelationID: uuid.New(),
			OrderID:       market.OrderID{Trader: market.TraderID(*trader), Seq: *seq},
		}
	default:
		log.Fatalf("unknown action %q", *action)
	}

	if _, err := conn.Write(req.Encode()); err != nil {
		log.Fatalf("write request: %v", err)
	}

	buf := make([]byte, 4*1024)
	n, err := conn.Read(buf)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	resp, err := wire.DecodeResponse(buf[:n])
	if err != nil {
		log.Fatalf("decode response: %v", err)
	}
	if resp.Type == wire.TypeReject {
		fmt.Printf("rejected: %s\n", resp.Reason)
		return
	}
	fmt.Printf("ack: order seq %d\n", resp.OrderSeq)
}
