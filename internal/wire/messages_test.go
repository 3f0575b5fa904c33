package wire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benthic/internal/decimal"
	"benthic/internal/market"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewOrderRequestRoundTrip(t *testing.T) {
	req := NewOrderRequest{
		CorrelationID: uuid.New(),
		Trader:        1001,
		Instrument:    market.Instrument{Base: "BTC", Quote: "USDT"},
		Side:          market.Sell,
		Kind:          market.IOC,
		Price:         dec("50000"),
		Quantity:      dec("1.5"),
	}

	msg, err := Decode(req.Encode())
	require.NoError(t, err)
	got, ok := msg.(NewOrderRequest)
	require.True(t, ok)

	assert.Equal(t, req.CorrelationID, got.CorrelationID)
	assert.Equal(t, req.Trader, got.Trader)
	assert.Equal(t, req.Instrument, got.Instrument)
	assert.Equal(t, req.Side, got.Side)
	assert.Equal(t, req.Kind, got.Kind)
	assert.True(t, req.Price.Cmp(got.Price) == 0)
	assert.True(t, req.Quantity.Cmp(got.Quantity) == 0)
}

func TestCancelOrderRequestRoundTrip(t *testing.T) {
	req := CancelOrderRequest{
		CorrelationID: uuid.New(),
		OrderID:       market.OrderID{Trader: 1001, Seq: 42},
	}

	msg, err := Decode(req.Encode())
	require.NoError(t, err)
	got, ok := msg.(CancelOrderRequest)
	require.True(t, ok)
	assert.Equal(t, req.CorrelationID, got.CorrelationID)
	assert.Equal(t, req.OrderID, got.OrderID)
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{
		CorrelationID: uuid.New(),
		Type:          TypeReject,
		OrderSeq:      7,
		Reason:        "insufficient funds",
	}

	got, err := DecodeResponse(resp.Encode())
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestDecodeTooShortMessage(t *testing.T) {
	_, err := Decode([]byte{0})
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte{0xFF, 0xFF})
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestAssetRoundTrip(t *testing.T) {
	buf := packAsset("BTC")
	assert.Equal(t, market.Asset("BTC"), unpackAsset(buf[:]))
}
