// Package dropdown is the state machine behind the custom select used for
// enumerated form fields. The selected value is owned by the caller; the
// controller only tracks whether the list is open.
package dropdown

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Skufu/heartform/internal/pointer"
)

const Placeholder = "Select..."

// Animation timing of the option list. Exit starts only after the open flag
// has already been cleared.
const (
	AnimationDuration = 200 * time.Millisecond
	ItemStagger       = 50 * time.Millisecond
)

var ErrUnknownOption = errors.New("unknown option")

type Option struct {
	Value string
	Label string
}

// Item is an option as rendered in the open list.
type Item struct {
	Option
	Selected bool
	Delay    time.Duration
}

type Phase int

const (
	PhaseEnter Phase = iota
	PhaseExit
)

type Controller struct {
	field    string
	options  []Option
	selected func() string
	onChange func(field, code string)

	mu          sync.Mutex
	open        bool
	transition  func(Phase)
	unsubscribe func()
}

// New creates a closed dropdown for field. selected reads the current code
// from the owner and onChange is called with the code the user picked.
func New(field string, options []Option, selected func() string, onChange func(field, code string)) *Controller {
	opts := make([]Option, len(options))
	copy(opts, options)
	return &Controller{
		field:    field,
		options:  opts,
		selected: selected,
		onChange: onChange,
	}
}

func (c *Controller) Field() string {
	return c.field
}

// ID is the root of the component's element paths on the page.
func (c *Controller) ID() string {
	return "select/" + c.field
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// OnTransition registers fn to run after each open or close.
func (c *Controller) OnTransition(fn func(Phase)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition = fn
}

func (c *Controller) Toggle() {
	c.update(func(open bool) bool { return !open })
}

// Select reports code to the owner and closes the list.
func (c *Controller) Select(code string) error {
	if _, ok := c.find(code); !ok {
		return fmt.Errorf("%w: %q for %s", ErrUnknownOption, code, c.field)
	}
	if c.onChange != nil {
		c.onChange(c.field, code)
	}
	c.setOpen(false)
	return nil
}

// Label is the label of the selected option, or Placeholder when the
// selected code is not one of the options.
func (c *Controller) Label() string {
	if opt, ok := c.find(c.current()); ok {
		return opt.Label
	}
	return Placeholder
}

func (c *Controller) Items() []Item {
	cur := c.current()
	items := make([]Item, len(c.options))
	for i, o := range c.options {
		items[i] = Item{
			Option:   o,
			Selected: o.Value == cur,
			Delay:    time.Duration(i) * ItemStagger,
		}
	}
	return items
}

// Mount starts listening for pointer events outside the component. Mounting
// an already mounted controller does nothing.
func (c *Controller) Mount(bus *pointer.Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		return
	}
	c.unsubscribe = bus.Subscribe(c.handlePointer)
}

func (c *Controller) Unmount() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribe != nil
}

func (c *Controller) handlePointer(e pointer.Event) {
	if !c.IsOpen() || pointer.Within(e.Target, c.ID()) {
		return
	}
	c.setOpen(false)
}

func (c *Controller) setOpen(open bool) {
	c.update(func(bool) bool { return open })
}

// update computes and stores the next open flag in one critical section, then
// runs the transition hook outside the lock.
func (c *Controller) update(next func(open bool) bool) {
	c.mu.Lock()
	open := next(c.open)
	if c.open == open {
		c.mu.Unlock()
		return
	}
	c.open = open
	fn := c.transition
	c.mu.Unlock()

	if fn == nil {
		return
	}
	if open {
		fn(PhaseEnter)
	} else {
		fn(PhaseExit)
	}
}

func (c *Controller) current() string {
	if c.selected == nil {
		return ""
	}
	return c.selected()
}

func (c *Controller) find(code string) (Option, bool) {
	for _, o := range c.options {
		if o.Value == code {
			return o, true
		}
	}
	return Option{}, false
}
