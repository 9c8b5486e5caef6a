package bot

import (
	"context"
	"sort"
)

// UnknownCommandMessage answers a command nobody handles.
const UnknownCommandMessage = "🤷 Unknown command. Send /help for the list of commands."

// Router dispatches commands by name and everything else to the text handler.
type Router struct {
	commands map[string]Handler
	text     Handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{commands: make(map[string]Handler)}
}

// Handle registers h for /name.
func (r *Router) Handle(name string, h Handler) {
	r.commands[name] = h
}

// HandleText registers the handler for messages that are not commands.
func (r *Router) HandleText(h Handler) {
	r.text = h
}

// Commands lists the registered command names, sorted.
func (r *Router) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch is a Handler.
func (r *Router) Dispatch(ctx context.Context, m Message) (string, error) {
	name, _, isCommand := m.Command()
	if !isCommand {
		if r.text == nil {
			return "", nil
		}
		return r.text(ctx, m)
	}
	h, ok := r.commands[name]
	if !ok {
		return UnknownCommandMessage, nil
	}
	return h(ctx, m)
}
