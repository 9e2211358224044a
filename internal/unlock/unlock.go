// Package unlock maps solved faces to navigation links. A link is active
// while its face is solved and is retracted when the face is scrambled.
package unlock

import (
	"sort"
	"sync"
	"time"

	"github.com/SeamusWaldron/cubegate"
)

// Target is the destination a face unlocks.
type Target struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Link is an unlocked target.
type Link struct {
	Face       cubegate.Face `json:"face"`
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	UnlockedAt time.Time     `json:"unlocked_at"`
}

// Change reports a link becoming active or being retracted.
type Change struct {
	Link   Link
	Active bool
}

// Registry tracks which faces' links are active.
type Registry struct {
	targets map[cubegate.Face]Target
	now     func() time.Time

	mu     sync.RWMutex
	active map[cubegate.Face]Link

	cbMu      sync.RWMutex
	listeners []func(Change)
}

// NewRegistry creates a registry for the given targets. Faces without a
// target never produce links.
func NewRegistry(targets map[cubegate.Face]Target) *Registry {
	t := make(map[cubegate.Face]Target, len(targets))
	for f, target := range targets {
		t[f] = target
	}
	return &Registry{
		targets: t,
		now:     time.Now,
		active:  make(map[cubegate.Face]Link),
	}
}

// OnChange registers a listener for link activations and retractions.
func (r *Registry) OnChange(cb func(Change)) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	r.listeners = append(r.listeners, cb)
}

// Attach subscribes the registry to an engine's face events and unlocks
// the faces already solved. Attach before submitting moves; a move that
// completes during Attach may leave one link stale until its face changes.
func (r *Registry) Attach(e *cubegate.Engine) {
	e.OnFaceChange(r.Handle)
	for _, f := range e.SolvedFaces() {
		r.Handle(cubegate.FaceEvent{Face: f, Transition: cubegate.Solved})
	}
}

// Handle applies one face transition.
func (r *Registry) Handle(ev cubegate.FaceEvent) {
	target, ok := r.targets[ev.Face]
	if !ok {
		return
	}

	r.mu.Lock()
	var change *Change
	switch ev.Transition {
	case cubegate.Solved:
		if _, exists := r.active[ev.Face]; !exists {
			link := Link{Face: ev.Face, Title: target.Title, URL: target.URL, UnlockedAt: r.now()}
			r.active[ev.Face] = link
			change = &Change{Link: link, Active: true}
		}
	case cubegate.Unsolved:
		if link, exists := r.active[ev.Face]; exists {
			delete(r.active, ev.Face)
			change = &Change{Link: link, Active: false}
		}
	}
	r.mu.Unlock()

	if change == nil {
		return
	}
	r.cbMu.RLock()
	listeners := r.listeners
	r.cbMu.RUnlock()
	for _, cb := range listeners {
		cb(*change)
	}
}

// Links returns the active links in face order.
func (r *Registry) Links() []Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]Link, 0, len(r.active))
	for _, l := range r.active {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Face < links[j].Face })
	return links
}

// Active reports whether face f's link is unlocked.
func (r *Registry) Active(f cubegate.Face) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.active[f]
	return ok
}

// Targets returns the configured targets.
func (r *Registry) Targets() map[cubegate.Face]Target {
	out := make(map[cubegate.Face]Target, len(r.targets))
	for f, t := range r.targets {
		out[f] = t
	}
	return out
}
