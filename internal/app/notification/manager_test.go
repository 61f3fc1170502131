package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAndBroadcast(t *testing.T) {
	m := NewManager()
	defer m.Close()

	_, ch1 := m.Subscribe()
	_, ch2 := m.Subscribe()
	assert.Equal(t, 2, m.SubscriberCount())

	m.Broadcast("clip_started", map[string]string{"clip_id": "abc"})

	n1 := <-ch1
	n2 := <-ch2
	assert.Equal(t, "clip_started", n1.Type)
	assert.Equal(t, n1.SequenceNo, n2.SequenceNo, "all subscribers see the same sequence number")
	assert.False(t, n1.Timestamp.IsZero())
}

func TestSequenceNumbersIncrease(t *testing.T) {
	m := NewManager()
	defer m.Close()

	_, ch := m.Subscribe()

	m.Broadcast("state_changed", nil)
	m.Broadcast("state_changed", nil)

	first := <-ch
	second := <-ch
	assert.Greater(t, second.SequenceNo, first.SequenceNo)
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager()
	defer m.Close()

	id, ch := m.Subscribe()
	m.Unsubscribe(id)
	assert.Equal(t, 0, m.SubscriberCount())

	_, open := <-ch
	assert.False(t, open, "channel is closed on unsubscribe")

	// Unsubscribing twice is a no-op.
	m.Unsubscribe(id)
}

func TestBroadcast_SlowSubscriberDoesNotBlock(t *testing.T) {
	m := NewManager()
	defer m.Close()

	_, ch := m.Subscribe()

	// Overflow the subscriber buffer; Broadcast must not block.
	for i := 0; i < 32; i++ {
		m.Broadcast("tick", nil)
	}

	// The buffered prefix is still delivered in order.
	first := <-ch
	require.Equal(t, uint64(1), first.SequenceNo)
	assert.Len(t, ch, 15)
}

func TestClose_ClosesAllChannels(t *testing.T) {
	m := NewManager()

	_, ch1 := m.Subscribe()
	_, ch2 := m.Subscribe()

	m.Close()

	_, open1 := <-ch1
	_, open2 := <-ch2
	assert.False(t, open1)
	assert.False(t, open2)
	assert.Equal(t, 0, m.SubscriberCount())
}
