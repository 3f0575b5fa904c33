// Package netsrv is the TCP daemon plumbing around internal/exchange: a
// worker pool that reads wire requests off accepted connections and a
// single dispatcher goroutine that is the only caller into the Exchange,
// which is what keeps the single-writer model of §5 true even though many
// connections are served concurrently. Adapted from the teacher's
// internal/net/server.go, with its session-handling bugs (a workerless
// pool, a reference to a field — message.message.typeOf — unreachable
// from another package, an AddTask call with no AddTask method) fixed
// rather than carried forward.
package netsrv

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"benthic/internal/exchange"
	"benthic/internal/wire"
)

const (
	maxRecvSize        = 4 * 1024
	defaultWorkers     = 10
	defaultConnTimeout = 5 * time.Second
)

// Server accepts connections, decodes wire requests, and funnels them onto
// one dispatcher goroutine that owns the Exchange.
type Server struct {
	addr     string
	ex       *exchange.Exchange
	pool     *WorkerPool
	log      zerolog.Logger
	requests chan dispatchRequest
	cancel   context.CancelFunc
}

type dispatchRequest struct {
	conn net.Conn
	msg  any
}

func New(addr string, ex *exchange.Exchange, log zerolog.Logger) *Server {
	return &Server{
		addr:     addr,
		ex:       ex,
		pool:     NewWorkerPool(defaultWorkers, log),
		log:      log,
		requests: make(chan dispatchRequest, 256),
	}
}

// Run listens on addr until ctx is cancelled, blocking until shutdown.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("netsrv: listen: %w", err)
	}
	defer listener.Close()

	s.pool.Setup(t, s.handleConnection)
	t.Go(func() error { return s.dispatch(t) })

	t.Go(func() error {
		<-t.Dying()
		return listener.Close()
	})

	s.log.Info().Str("addr", s.addr).Msg("netsrv listening")
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-t.Dying():
				return t.Wait()
			default:
				s.log.Error().Err(err).Msg("accept failed")
				continue
			}
		}
		s.pool.AddTask(conn)
	}
}

func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// handleConnection reads exactly one request and forwards it to the
// dispatcher, which replies and re-queues the connection for its next
// message.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return fmt.Errorf("netsrv: unexpected task type %T", task)
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		s.log.Error().Err(err).Msg("set deadline failed")
		conn.Close()
		return nil
	}

	buf := make([]byte, maxRecvSize)
	n, err := conn.Read(buf)
	if err != nil {
		s.log.Debug().Err(err).Msg("connection closed")
		conn.Close()
		return nil
	}

	msg, err := wire.Decode(buf[:n])
	if err != nil {
		s.log.Error().Err(err).Msg("malformed request")
		conn.Close()
		return nil
	}

	select {
	case <-t.Dying():
		conn.Close()
		return nil
	case s.requests <- dispatchRequest{conn: conn, msg: msg}:
	}
	return nil
}

// dispatch is the single goroutine that ever calls into s.ex, per §5's
// single-writer model.
func (s *Server) dispatch(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case req := <-s.requests:
			resp := s.handle(req.msg)
			_, _ = req.conn.Write(resp.Encode())
			s.pool.AddTask(req.conn)
		}
	}
}

func (s *Server) handle(msg any) wire.Response {
	switch m := msg.(type) {
	case wire.NewOrderRequest:
		id, err := s.ex.PlaceOrder(m.Trader, m.Instrument, m.Side, m.Kind, m.Quantity, m.Price)
		if err != nil {
			return wire.Response{CorrelationID: m.CorrelationID, Type: wire.TypeReject, Reason: err.Error()}
		}
		return wire.Response{CorrelationID: m.CorrelationID, Type: wire.TypeAck, OrderSeq: id.Seq}
	case wire.CancelOrderRequest:
		if err := s.ex.CancelOrder(m.OrderID); err != nil {
			return wire.Response{CorrelationID: m.CorrelationID, Type: wire.TypeReject, Reason: err.Error()}
		}
		return wire.Response{CorrelationID: m.CorrelationID, Type: wire.TypeAck, OrderSeq: m.OrderID.Seq}
	default:
		return wire.Response{CorrelationID: uuid.Nil, Type: wire.TypeReject, Reason: "unknown request"}
	}
}
