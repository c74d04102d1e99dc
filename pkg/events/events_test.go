package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleCompletedPayload(t *testing.T) {
	ev := SaleCompleted{
		Type:       TypeSaleCompleted,
		OrderID:    42,
		StoreID:    2,
		Total:      decimal.RequireFromString("12.50"),
		Items:      []SaleLine{{ProductID: 7, ProductName: "Agua", Quantity: 5, PriceAtSale: decimal.RequireFromString("2.50")}},
		OccurredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "sale.completed", decoded["type"])
	assert.Equal(t, float64(42), decoded["order_id"])
	assert.Equal(t, "12.5", decoded["total"])
	assert.Len(t, decoded["items"], 1)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishEvent(context.Background(), "1", SaleCancelled{Type: TypeSaleCancelled}))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisherRejectsUnmarshalableEvent(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:9092"}, "pos.sales", nil)
	defer p.Close()

	err := p.PublishEvent(context.Background(), "1", map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, "failed to marshal event")
}

func TestKafkaPublisherDoesNotBlockCallers(t *testing.T) {
	var delivered []error
	p := NewKafkaPublisher([]string{"127.0.0.1:9092"}, "pos.sales", func(err error) {
		delivered = append(delivered, err)
	})
	defer p.Close()

	assert.True(t, p.writer.Async)
	assert.LessOrEqual(t, p.writer.BatchTimeout, 50*time.Millisecond)

	p.writer.Completion([]kafka.Message{{Key: []byte("1")}}, nil)
	assert.Empty(t, delivered)

	p.writer.Completion([]kafka.Message{{Key: []byte("1")}, {Key: []byte("2")}}, errors.New("broker down"))
	require.Len(t, delivered, 1)
	assert.EqualError(t, delivered[0], "failed to deliver 2 event(s): broker down")
}
