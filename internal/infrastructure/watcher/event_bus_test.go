package watcher

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourassist/backend/internal/domain/events"
)

func readyEvent(path string) *events.InboxFileEvent {
	return &events.InboxFileEvent{
		EventType: events.InboxFileReady,
		TenantID:  "t1",
		FilePath:  path,
		EventTime: time.Now(),
	}
}

func TestEventBus_Subscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	var received atomic.Value
	unsub := bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(event events.Event) error {
		received.Store(event.(*events.InboxFileEvent).FilePath)
		return nil
	}))
	defer unsub()

	bus.Publish(readyEvent("/inbox/t1/guide.txt"))

	assert.Eventually(t, func() bool {
		return received.Load() == "/inbox/t1/guide.txt"
	}, time.Second, 10*time.Millisecond)
}

func TestEventBus_MultipleHandlers(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	var count atomic.Int32
	for i := 0; i < 3; i++ {
		unsub := bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(event events.Event) error {
			count.Add(1)
			return nil
		}))
		defer unsub()
	}

	bus.Publish(readyEvent("a.txt"))

	assert.Eventually(t, func() bool { return count.Load() == 3 }, time.Second, 10*time.Millisecond)
}

func TestEventBus_TypeRouting(t *testing.T) {
	bus := NewEventBus()

	var ready, removed atomic.Int32
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		ready.Add(1)
		return nil
	}))
	bus.Subscribe(events.InboxFileRemoved, events.HandlerFunc(func(events.Event) error {
		removed.Add(1)
		return nil
	}))

	bus.Publish(readyEvent("a.txt"))
	bus.Close()

	assert.Equal(t, int32(1), ready.Load())
	assert.Equal(t, int32(0), removed.Load())
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()

	var first, second atomic.Int32
	unsubFirst := bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		first.Add(1)
		return nil
	}))
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		second.Add(1)
		return nil
	}))

	unsubFirst()
	unsubFirst()
	bus.Publish(readyEvent("a.txt"))
	bus.Close()

	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestEventBus_ErrorIsolation(t *testing.T) {
	bus := NewEventBus()

	var successCount atomic.Int32
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		return errors.New("handler error")
	}))
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		successCount.Add(1)
		return nil
	}))

	bus.Publish(readyEvent("a.txt"))
	bus.Close()

	assert.Equal(t, int32(1), successCount.Load())
}

func TestEventBus_PanicRecovery(t *testing.T) {
	bus := NewEventBus()

	var successCount atomic.Int32
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		panic("handler panic")
	}))
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		successCount.Add(1)
		return nil
	}))

	require.NotPanics(t, func() { bus.Publish(readyEvent("a.txt")) })
	bus.Close()

	assert.Equal(t, int32(1), successCount.Load())
}

func TestEventBus_ClosedDropsEvents(t *testing.T) {
	bus := NewEventBus()

	var count atomic.Int32
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		count.Add(1)
		return nil
	}))
	bus.Close()

	bus.Publish(readyEvent("a.txt"))
	assert.Equal(t, int32(0), count.Load())
}

func TestEventBus_CloseWaitsForHandlers(t *testing.T) {
	bus := NewEventBus()

	handlerStarted := make(chan struct{})
	var finished atomic.Bool
	bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(events.Event) error {
		close(handlerStarted)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return nil
	}))

	bus.Publish(readyEvent("a.txt"))
	<-handlerStarted

	bus.Close()
	assert.True(t, finished.Load(), "Close must wait for in-flight handlers")
}
