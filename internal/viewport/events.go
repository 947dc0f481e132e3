package viewport

import (
	"geoview/internal/geo"
)

// Event names fired by the viewport after a notification cycle completes
const (
	EventCenter = "center"
	EventZoom   = "zoom"
	EventResize = "resize"
)

// Event describes the viewport after a change
type Event struct {
	Name       string
	Center     geo.LatLon
	Resolution float64
	Level      float64
}

// Listener receives viewport events
type Listener func(Event)

type registration struct {
	fn        Listener
	once      bool
	cancelled bool
}

// Events is a small synchronous listener registry. Each registration is
// called at most once per Emit; Once registrations are dropped before they
// run. A registration cancelled during an Emit is not called later in it.
type Events struct {
	listeners map[string][]*registration
}

// On registers fn for name and returns a function that removes it
func (e *Events) On(name string, fn Listener) (cancel func()) {
	return e.add(name, fn, false)
}

// Once registers fn for the next name event only
func (e *Events) Once(name string, fn Listener) (cancel func()) {
	return e.add(name, fn, true)
}

func (e *Events) add(name string, fn Listener, once bool) func() {
	if e.listeners == nil {
		e.listeners = make(map[string][]*registration)
	}
	reg := &registration{fn: fn, once: once}
	e.listeners[name] = append(e.listeners[name], reg)

	return func() { e.remove(name, reg) }
}

func (e *Events) remove(name string, reg *registration) {
	reg.cancelled = true
	regs := e.listeners[name]
	for i, r := range regs {
		if r == reg {
			e.listeners[name] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Emit calls every listener registered for ev.Name at the time of the call
func (e *Events) Emit(ev Event) {
	regs := e.listeners[ev.Name]
	if len(regs) == 0 {
		return
	}

	snapshot := make([]*registration, len(regs))
	copy(snapshot, regs)

	kept := regs[:0:0]
	for _, r := range regs {
		if !r.once {
			kept = append(kept, r)
		}
	}
	e.listeners[ev.Name] = kept

	for _, r := range snapshot {
		if r.cancelled {
			continue
		}
		r.fn(ev)
	}
}

// Count returns the number of listeners registered for name
func (e *Events) Count(name string) int {
	return len(e.listeners[name])
}
