package notifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

type subscription struct {
	notifier Notifier
	kinds    map[Kind]bool // nil receives every kind
}

func (s subscription) wants(kind Kind) bool {
	return s.kinds == nil || s.kinds[kind]
}

// Registry holds the configured notifiers and the message kinds each one
// subscribes to.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]subscription)}
}

// Register adds n. With no kinds it receives every message.
func (r *Registry) Register(n Notifier, kinds ...Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, exists := r.subs[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}

	sub := subscription{notifier: n}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}
	r.subs[name] = sub
	return nil
}

// Get retrieves a notifier by name.
func (r *Registry) Get(name string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.subs[name]
	if !exists {
		return nil, fmt.Errorf("notifier %s not found", name)
	}
	return sub.notifier, nil
}

// Len reports how many notifiers are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Subscribers returns the notifiers receiving kind, ordered by name.
func (r *Registry) Subscribers(kind Kind) []Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Notifier, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.wants(kind) {
			result = append(result, sub.notifier)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Delivery is the outcome of one NotifyAll call.
type Delivery struct {
	Sent   []string
	Failed map[string]error
}

// Attempted reports whether any notifier was subscribed to the message.
func (d Delivery) Attempted() bool {
	return len(d.Sent)+len(d.Failed) > 0
}

// FailedNames returns the failed notifier names, sorted.
func (d Delivery) FailedNames() []string {
	names := make([]string, 0, len(d.Failed))
	for name := range d.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Err joins the failures in name order, or returns nil.
func (d Delivery) Err() error {
	if len(d.Failed) == 0 {
		return nil
	}
	names := d.FailedNames()
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %w", name, d.Failed[name]))
	}
	return errors.Join(errs...)
}

// NotifyAll sends msg to every notifier subscribed to its kind. One failing
// notifier does not stop delivery to the others.
func (r *Registry) NotifyAll(ctx context.Context, msg Message) Delivery {
	d := Delivery{Failed: make(map[string]error)}
	for _, n := range r.Subscribers(msg.Kind) {
		if err := n.Send(ctx, msg); err != nil {
			d.Failed[n.Name()] = err
			continue
		}
		d.Sent = append(d.Sent, n.Name())
	}
	return d
}
