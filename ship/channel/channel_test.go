package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultaevm/ship-receiver/ship/normalize"
)

func block(num uint32) *normalize.NativeBlock {
	return &normalize.NativeBlock{BlockNum: num}
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	f := New()
	assert.NotPanics(t, func() { f.Publish(block(1), DefaultPublishPriority) })
}

func TestSubscribeReceivesPublishedBlocks(t *testing.T) {
	f := New()
	sub := f.Subscribe()
	f.Publish(block(1), DefaultPublishPriority)

	got, ok := sub.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(1), got.BlockNum)
}

func TestHigherPriorityDrainsFirst(t *testing.T) {
	f := New()
	sub := f.Subscribe()

	f.Publish(block(1), 10)
	f.Publish(block(2), 90)
	f.Publish(block(3), 10)

	first, ok := sub.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(2), first.BlockNum)

	second, ok := sub.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(1), second.BlockNum)

	third, ok := sub.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(3), third.BlockNum)
}

func TestUnsubscribeUnblocksNext(t *testing.T) {
	f := New()
	sub := f.Subscribe()

	done := make(chan bool, 1)
	go func() {
		_, ok := sub.Next()
		done <- ok
	}()

	sub.Unsubscribe()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock after Unsubscribe")
	}
}
