package dropdown

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/heartform/internal/pointer"
)

var yesNo = []Option{{Value: "0", Label: "No"}, {Value: "1", Label: "Yes"}}

type owner struct {
	value   string
	changes []string
}

func (o *owner) selected() string { return o.value }

func (o *owner) onChange(field, code string) {
	o.changes = append(o.changes, field+"="+code)
	o.value = code
}

func newOwned(value string) (*Controller, *owner) {
	o := &owner{value: value}
	return New("ExerciseAngina", yesNo, o.selected, o.onChange), o
}

func TestLabel(t *testing.T) {
	c, o := newOwned("1")
	assert.Equal(t, "Yes", c.Label())

	o.value = "9"
	assert.Equal(t, Placeholder, c.Label())

	assert.Equal(t, Placeholder, New("X", yesNo, nil, nil).Label())
}

func TestToggle(t *testing.T) {
	c, o := newOwned("0")
	assert.False(t, c.IsOpen())

	c.Toggle()
	assert.True(t, c.IsOpen())
	c.Toggle()
	assert.False(t, c.IsOpen())
	assert.Empty(t, o.changes)
}

func TestSelectCallsOwnerAndCloses(t *testing.T) {
	c, o := newOwned("0")
	c.Toggle()

	require.NoError(t, c.Select("1"))
	assert.Equal(t, []string{"ExerciseAngina=1"}, o.changes)
	assert.False(t, c.IsOpen())
	assert.Equal(t, "Yes", c.Label())
}

func TestSelectUnknownOption(t *testing.T) {
	c, o := newOwned("0")
	c.Toggle()

	err := c.Select("7")
	assert.True(t, errors.Is(err, ErrUnknownOption))
	assert.Empty(t, o.changes)
	assert.True(t, c.IsOpen())
}

func TestOutsidePointerCloses(t *testing.T) {
	bus := pointer.NewBus()
	c, o := newOwned("0")
	c.Mount(bus)
	c.Mount(bus)
	assert.Equal(t, 1, bus.Len())

	c.Toggle()
	bus.Dispatch(pointer.Event{Target: c.ID() + "/option/1"})
	assert.True(t, c.IsOpen(), "pointer inside keeps the list open")

	bus.Dispatch(pointer.Event{Target: "select/Sex"})
	assert.False(t, c.IsOpen())
	assert.Empty(t, o.changes)

	c.Unmount()
	assert.Equal(t, 0, bus.Len())
	assert.False(t, c.Mounted())

	c.Toggle()
	bus.Dispatch(pointer.Event{Target: ""})
	assert.True(t, c.IsOpen(), "unmounted dropdown ignores the page")
}

func TestInstancesListenIndependently(t *testing.T) {
	bus := pointer.NewBus()
	a := New("Sex", []Option{{Value: "0", Label: "Female"}, {Value: "1", Label: "Male"}}, nil, nil)
	b := New("FBS", yesNo, nil, nil)
	a.Mount(bus)
	b.Mount(bus)

	a.Toggle()
	b.Toggle()
	bus.Dispatch(pointer.Event{Target: b.ID()})

	assert.False(t, a.IsOpen())
	assert.True(t, b.IsOpen())

	a.Unmount()
	assert.Equal(t, 1, bus.Len())
}

func TestExitHookSeesClosedState(t *testing.T) {
	c, _ := newOwned("0")
	var phases []Phase
	var openAtExit bool
	c.OnTransition(func(p Phase) {
		phases = append(phases, p)
		if p == PhaseExit {
			openAtExit = c.IsOpen()
		}
	})

	c.Toggle()
	require.NoError(t, c.Select("1"))

	assert.Equal(t, []Phase{PhaseEnter, PhaseExit}, phases)
	assert.False(t, openAtExit)
}

func TestItemsStagger(t *testing.T) {
	c, _ := newOwned("1")
	items := c.Items()
	require.Len(t, items, 2)
	assert.False(t, items[0].Selected)
	assert.True(t, items[1].Selected)
	assert.Equal(t, ItemStagger, items[1].Delay)
}

func TestConcurrentTogglesEachFlip(t *testing.T) {
	dd := New("Sex", yesNo, func() string { return "0" }, nil)

	var enters, exits atomic.Int32
	dd.OnTransition(func(p Phase) {
		if p == PhaseEnter {
			enters.Add(1)
		} else {
			exits.Add(1)
		}
	})

	const toggles = 200
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dd.Toggle()
		}()
	}
	wg.Wait()

	assert.False(t, dd.IsOpen())
	assert.Equal(t, int32(toggles/2), enters.Load())
	assert.Equal(t, int32(toggles/2), exits.Load())
}
