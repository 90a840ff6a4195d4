package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeDispatchCancel(t *testing.T) {
	bus := NewBus()
	var got []string

	cancel := bus.Subscribe(func(e Event) { got = append(got, e.Target) })
	assert.Equal(t, 1, bus.Len())

	bus.Dispatch(Event{Target: "page"})
	cancel()
	cancel()
	bus.Dispatch(Event{Target: "again"})

	assert.Equal(t, []string{"page"}, got)
	assert.Equal(t, 0, bus.Len())
}

func TestHandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()
	calls := 0
	var cancel func()
	cancel = bus.Subscribe(func(Event) {
		calls++
		cancel()
	})

	bus.Dispatch(Event{})
	bus.Dispatch(Event{})
	assert.Equal(t, 1, calls)
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("select/Sex", "select/Sex"))
	assert.True(t, Within("select/Sex/option/1", "select/Sex"))
	assert.False(t, Within("select/SexX", "select/Sex"))
	assert.False(t, Within("", "select/Sex"))
	assert.False(t, Within("select/Sex", ""))
}
