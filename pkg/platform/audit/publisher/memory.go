package publisher

import (
	"context"
	"sync"

	"pinky/pkg/platform/audit"
)

// MemoryPublisher records events in memory. Used in tests and as the default
// when no broker is configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func NewMemory() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]audit.Event, len(p.events))
	copy(out, p.events)
	return out
}

// ByAction filters recorded events by action name.
func (p *MemoryPublisher) ByAction(action string) []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []audit.Event
	for _, event := range p.events {
		if event.Action == action {
			out = append(out, event)
		}
	}
	return out
}
