package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProducer_NoBrokersIsNoOp(t *testing.T) {
	t.Parallel()
	p := NewProducer(nil, "")

	err := p.Publish(context.Background(), TypeOrderCreated, "1", map[string]any{"order_id": "1"})
	assert.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducer_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()
	var p *Producer

	assert.NoError(t, p.Publish(context.Background(), TypeVIPSubscribed, "k", nil))
	assert.NoError(t, p.Close())
}

func TestProducer_RejectsUnencodablePayload(t *testing.T) {
	t.Parallel()
	p := NewProducer([]string{"localhost:0"}, "shop.events")
	t.Cleanup(func() { _ = p.Close() })

	err := p.Publish(context.Background(), TypeOrderCreated, "1", map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}
