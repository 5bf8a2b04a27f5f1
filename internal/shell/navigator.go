// Package shell tracks which of the four screens is active.
package shell

import (
	"strings"
	"sync"
)

// Destination names one screen.
type Destination string

const (
	Talk     Destination = "talk"
	Journal  Destination = "journal"
	Mood     Destination = "mood"
	Progress Destination = "progress"
)

// Tab is one entry of the navigation bar.
type Tab struct {
	Destination Destination `json:"destination"`
	Title       string      `json:"title"`
	Active      bool        `json:"active"`
}

var order = []struct {
	dest  Destination
	title string
}{
	{Talk, "Talk"},
	{Journal, "Journal"},
	{Mood, "Mood"},
	{Progress, "Progress"},
}

// Parse maps a name to a destination. Unknown names fall back to Talk.
func Parse(name string) (Destination, bool) {
	d := Destination(strings.ToLower(strings.TrimSpace(name)))
	for _, item := range order {
		if item.dest == d {
			return d, true
		}
	}
	return Talk, false
}

// Destinations lists all screens in navigation order.
func Destinations() []Destination {
	out := make([]Destination, len(order))
	for i, item := range order {
		out[i] = item.dest
	}
	return out
}

// Navigator holds the active destination; exactly one is active at a time.
type Navigator struct {
	mu     sync.RWMutex
	active Destination
}

func NewNavigator() *Navigator {
	return &Navigator{active: Talk}
}

// Select activates name and returns what became active.
func (n *Navigator) Select(name string) Destination {
	dest, _ := Parse(name)
	n.mu.Lock()
	n.active = dest
	n.mu.Unlock()
	return dest
}

// Active returns the current destination.
func (n *Navigator) Active() Destination {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.active
}

// Next moves one tab forward (or back when delta is negative), wrapping around.
func (n *Navigator) Next(delta int) Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	idx := 0
	for i, item := range order {
		if item.dest == n.active {
			idx = i
		}
	}
	idx = ((idx+delta)%len(order) + len(order)) % len(order)
	n.active = order[idx].dest
	return n.active
}

// Tabs renders the navigation bar state.
func (n *Navigator) Tabs() []Tab {
	active := n.Active()
	tabs := make([]Tab, len(order))
	for i, item := range order {
		tabs[i] = Tab{Destination: item.dest, Title: item.title, Active: item.dest == active}
	}
	return tabs
}
