// Command benthicd runs the Benthic core behind a TCP listener, adapted
// from the teacher's cmd/main.go: a context, a server, and a run-until-
// cancelled main loop.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"benthic/internal/event"
	"benthic/internal/exchange"
	"benthic/internal/market"
	"benthic/internal/netsrv"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9001", "TCP address to listen on")
	flag.Parse()

	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	instruments := []market.Instrument{
		{Base: "BTC", Quote: "USDT"},
		{Base: "ETH", Quote: "USDT"},
		{Base: "BTC", Quote: "ETH"},
	}
	ex := exchange.New(instruments, event.NewConsoleSink(log))

	srv := netsrv.New(*addr, ex, log)

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("benthicd exited")
	}
}
