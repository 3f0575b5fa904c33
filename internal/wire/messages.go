// Package wire is the binary request/response protocol the daemon speaks,
// adapted from the teacher's internal/net/messages.go: the same
// BigEndian-framed fixed-header-plus-variable-tail layout, generalized
// from the teacher's equities NewOrder/CancelOrder shape to Benthic's
// (base, quote) instruments, Decimal-encoded price/quantity, and the
// three order kinds.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

var (
	ErrInvalidMessageType = errors.New("wire: invalid message type")
	ErrMessageTooShort    = errors.New("wire: message too short")
)

type MessageType uint16

const (
	TypeNewOrder MessageType = iota
	TypeCancelOrder
	TypeAck
	TypeReject
)

// fixed-length fields: type(2) + correlation uuid(16) + trader(8) +
// base(8) + quote(8) + side(1) + kind(1) + price(8) + qty(8)
const newOrderHeaderLen = 2 + 16 + 8 + 8 + 8 + 1 + 1 + 8 + 8

// assetLen is the fixed width an Asset symbol is packed into on the wire.
const assetLen = 8

// NewOrderRequest is a place_order call framed for the wire. CorrelationID
// is a uuid, purely for matching a response to a request — it plays no
// role in the core, which never sees it.
type NewOrderRequest struct {
	CorrelationID uuid.UUID
	Trader        market.TraderID
	Instrument    market.Instrument
	Side          market.Side
	Kind          market.Kind
	Price         decimal.Decimal
	Quantity      decimal.Decimal
}

func packAsset(a market.Asset) [assetLen]byte {
	var buf [assetLen]byte
	copy(buf[:], a)
	return buf
}

func unpackAsset(buf []byte) market.Asset {
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return market.Asset(buf[:end])
}

// Encode serializes a NewOrderRequest to its wire form.
func (r NewOrderRequest) Encode() []byte {
	buf := make([]byte, newOrderHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(TypeNewOrder))
	copy(buf[2:18], r.CorrelationID[:])
	binary.BigEndian.PutUint64(buf[18:26], uint64(r.Trader))

	base := packAsset(r.Instrument.Base)
	quote := packAsset(r.Instrument.Quote)
	copy(buf[26:34], base[:])
	copy(buf[34:42], quote[:])

	buf[42] = byte(r.Side)
	buf[43] = byte(r.Kind)
	binary.BigEndian.PutUint64(buf[44:52], r.Price.Scaled())
	binary.BigEndian.PutUint64(buf[52:60], r.Quantity.Scaled())
	return buf
}

// DecodeNewOrderRequest parses a NewOrderRequest's body (the type field
// already consumed by the caller's dispatch).
func DecodeNewOrderRequest(body []byte) (NewOrderRequest, error) {
	if len(body) < newOrderHeaderLen-2 {
		return NewOrderRequest{}, ErrMessageTooShort
	}
	var r NewOrderRequest
	copy(r.CorrelationID[:], body[0:16])
	r.Trader = market.TraderID(binary.BigEndian.Uint64(body[16:24]))
	r.Instrument = market.Instrument{
		Base:  unpackAsset(body[24:32]),
		Quote: unpackAsset(body[32:40]),
	}
	r.Side = market.Side(body[40])
	r.Kind = market.Kind(body[41])
	r.Price = decimal.FromScaled(binary.BigEndian.Uint64(body[42:50]))
	r.Quantity = decimal.FromScaled(binary.BigEndian.Uint64(body[50:58]))
	return r, nil
}

// cancel header: type(2) + correlation(16) + trader(8) + seq(8)
const cancelOrderHeaderLen = 2 + 16 + 8 + 8

type CancelOrderRequest struct {
	CorrelationID uuid.UUID
	OrderID       market.OrderID
}

func (r CancelOrderRequest) Encode() []byte {
	buf := make([]byte, cancelOrderHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(TypeCancelOrder))
	copy(buf[2:18], r.CorrelationID[:])
	binary.BigEndian.PutUint64(buf[18:26], uint64(r.OrderID.Trader))
	binary.BigEndian.PutUint64(buf[26:34], r.OrderID.Seq)
	return buf
}

func DecodeCancelOrderRequest(body []byte) (CancelOrderRequest, error) {
	if len(body) < cancelOrderHeaderLen-2 {
		return CancelOrderRequest{}, ErrMessageTooShort
	}
	var r CancelOrderRequest
	copy(r.CorrelationID[:], body[0:16])
	r.OrderID = market.OrderID{
		Trader: market.TraderID(binary.BigEndian.Uint64(body[16:24])),
		Seq:    binary.BigEndian.Uint64(body[24:32]),
	}
	return r, nil
}

// Response carries the outcome of either request back to the client: an
// Ack with the order's seq (newly assigned for a place, unchanged for a
// cancel), or a Reject with a human-readable reason.
type Response struct {
	CorrelationID uuid.UUID
	Type          MessageType // TypeAck or TypeReject
	OrderSeq      uint64
	Reason        string
}

func (r Response) Encode() []byte {
	reason := []byte(r.Reason)
	buf := make([]byte, 2+16+8+4+len(reason))
	binary.BigEndian.PutUint16(buf[0:2], uint16(r.Type))
	copy(buf[2:18], r.CorrelationID[:])
	binary.BigEndian.PutUint64(buf[18:26], r.OrderSeq)
	binary.BigEndian.PutUint32(buf[26:30], uint32(len(reason)))
	copy(buf[30:], reason)
	return buf
}

func DecodeResponse(msg []byte) (Response, error) {
	if len(msg) < 30 {
		return Response{}, ErrMessageTooShort
	}
	var r Response
	r.Type = MessageType(binary.BigEndian.Uint16(msg[0:2]))
	copy(r.CorrelationID[:], msg[2:18])
	r.OrderSeq = binary.BigEndian.Uint64(msg[18:26])
	n := binary.BigEndian.Uint32(msg[26:30])
	if len(msg) < 30+int(n) {
		return Response{}, ErrMessageTooShort
	}
	r.Reason = string(msg[30 : 30+n])
	return r, nil
}

// Decode dispatches on the leading type field, mirroring the teacher's
// parseMessage.
func Decode(msg []byte) (any, error) {
	if len(msg) < 2 {
		return nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]
	switch typeOf {
	case TypeNewOrder:
		return DecodeNewOrderRequest(body)
	case TypeCancelOrder:
		return DecodeCancelOrderRequest(body)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMessageType, typeOf)
	}
}
