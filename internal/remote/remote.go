// Package remote translates remote-control key codes into semantic actions and
// dispatches them to listener scopes owned by the visible screen.
package remote

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Code is a raw remote-control key code.
type Code int

// Recognized key codes. Everything else passes through unhandled.
const (
	KeyEnter Code = 13
	KeyLeft  Code = 37
	KeyUp    Code = 38
	KeyRight Code = 39
	KeyDown  Code = 40
	KeyBack  Code = 10009
)

// Action is the semantic event a recognized code maps to.
type Action int

const (
	ActionNone Action = iota
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionConfirm
	ActionBack
)

func (a Action) String() string {
	switch a {
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionConfirm:
		return "confirm"
	case ActionBack:
		return "back"
	default:
		return "none"
	}
}

// Translate maps a raw code to its action.
func Translate(code Code) (Action, bool) {
	switch code {
	case KeyLeft:
		return ActionLeft, true
	case KeyRight:
		return ActionRight, true
	case KeyUp:
		return ActionUp, true
	case KeyDown:
		return ActionDown, true
	case KeyEnter:
		return ActionConfirm, true
	case KeyBack:
		return ActionBack, true
	}
	return ActionNone, false
}

// CodeForKey maps a terminal key press to the remote code it emulates.
func CodeForKey(msg tea.KeyMsg) (Code, bool) {
	switch msg.String() {
	case "left":
		return KeyLeft, true
	case "right":
		return KeyRight, true
	case "up":
		return KeyUp, true
	case "down":
		return KeyDown, true
	case "enter":
		return KeyEnter, true
	case "esc", "backspace":
		return KeyBack, true
	}
	return 0, false
}

// Bindings are the optional callbacks a screen attaches to actions.
type Bindings struct {
	OnLeft    func()
	OnRight   func()
	OnUp      func()
	OnDown    func()
	OnConfirm func()
	OnBack    func()
}

// Handle invokes at most one callback for code. It reports whether the code
// is recognized, which is when the caller should suppress default handling,
// even if no callback is bound for it.
func (b Bindings) Handle(code Code) bool {
	action, ok := Translate(code)
	if !ok {
		return false
	}
	if fn := b.callback(action); fn != nil {
		fn()
	}
	return true
}

func (b Bindings) callback(a Action) func() {
	switch a {
	case ActionLeft:
		return b.OnLeft
	case ActionRight:
		return b.OnRight
	case ActionUp:
		return b.OnUp
	case ActionDown:
		return b.OnDown
	case ActionConfirm:
		return b.OnConfirm
	case ActionBack:
		return b.OnBack
	}
	return nil
}

// Dispatcher fans key codes out to the currently registered listener scopes.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener
}

type listener struct {
	id       int
	bindings Bindings
}

// NewDispatcher creates a dispatcher with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Listen registers bindings and returns the function that removes them.
// Calling the release function more than once is harmless.
func (d *Dispatcher) Listen(b Bindings) (release func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, listener{id: id, bindings: b})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(id) })
	}
}

func (d *Dispatcher) remove(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch delivers code to every active scope in registration order. It
// reports whether the code is recognized.
func (d *Dispatcher) Dispatch(code Code) bool {
	if _, ok := Translate(code); !ok {
		return false
	}

	// Snapshot so callbacks may register or release scopes.
	d.mu.Lock()
	active := make([]listener, len(d.listeners))
	copy(active, d.listeners)
	d.mu.Unlock()

	for _, l := range active {
		// A scope released by an earlier callback gets nothing more.
		if !d.registered(l.id) {
			continue
		}
		l.bindings.Handle(code)
	}
	return true
}

func (d *Dispatcher) registered(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// Len returns the number of active scopes.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}
