package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushPopFIFO(t *testing.T) {
	q := NewQueue[int]("q", 4)
	ctx := context.Background()
	require.True(t, q.Push(ctx, 1))
	require.True(t, q.Push(ctx, 2))
	v, ok := q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueuePushBlocksWhenFull(t *testing.T) {
	q := NewQueue[int]("q", 1)
	require.True(t, q.Push(context.Background(), 1))

	pushed := make(chan bool, 1)
	go func() { pushed <- q.Push(context.Background(), 2) }()

	select {
	case <-pushed:
		t.Fatal("push should have blocked while queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	_, ok := q.Pop(context.Background())
	require.True(t, ok)

	select {
	case ok := <-pushed:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("push did not unblock after pop freed capacity")
	}
}

func TestQueuePopBlocksWhenEmpty(t *testing.T) {
	q := NewQueue[int]("q", 4)
	popped := make(chan int, 1)
	go func() {
		v, ok := q.Pop(context.Background())
		if ok {
			popped <- v
		}
	}()

	select {
	case <-popped:
		t.Fatal("pop should have blocked on an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	q.Push(context.Background(), 42)
	select {
	case v := <-popped:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("pop did not unblock after push")
	}
}

func TestQueueCloseUnblocksWaitersAndDropsItems(t *testing.T) {
	q := NewQueue[int]("q", 1)
	require.True(t, q.Push(context.Background(), 1))

	pushed := make(chan bool, 1)
	go func() {
		pushed <- q.Push(context.Background(), 2) // blocks: queue is full
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-pushed:
		assert.False(t, ok, "push pending at close reports failure")
	case <-time.After(time.Second):
		t.Fatal("close did not unblock pending push")
	}

	_, ok := q.Pop(context.Background())
	assert.False(t, ok, "pop after close reports no value: queued items were dropped")
	assert.False(t, q.Push(context.Background(), 2), "push after close must fail")
}

func TestQueuePopTimeoutExpires(t *testing.T) {
	q := NewQueue[int]("q", 4)
	_, ok := q.PopTimeout(20 * time.Millisecond)
	assert.False(t, ok)
}
