// Package message carries text messages from the host platform to the engine, such as
// notifications raised by native UI components.
package message

import (
	"maps"
	"slices"
	"sync"
)

// MessageEventArgs is a message plus an optional set of named properties.
type MessageEventArgs interface {
	// Message returns the message text. It is never empty.
	Message() string

	// Property returns the value stored under key.
	//
	// Parameters:
	//   - key: the property name
	//
	// Returns:
	//   - any: the value
	//   - bool: false if no value is stored under key
	Property(key string) (any, bool)

	// SetProperty stores value under key. A nil value removes the key.
	//
	// Parameters:
	//   - key: the property name
	//   - value: the value
	SetProperty(key string, value any)

	// Keys returns the property names in sorted order.
	Keys() []string
}

type messageEventArgs struct {
	message    string
	properties map[string]any
}

var _ MessageEventArgs = &messageEventArgs{}

// NewMessageEventArgs creates MessageEventArgs for message. It panics if message is empty.
//
// Parameters:
//   - message: the message text
//
// Returns:
//   - MessageEventArgs: the event arguments
func NewMessageEventArgs(message string) MessageEventArgs {
	if message == "" {
		panic("message: NewMessageEventArgs requires a non-empty message")
	}
	return &messageEventArgs{message: message}
}

func (m *messageEventArgs) Message() string {
	return m.message
}

func (m *messageEventArgs) Property(key string) (any, bool) {
	v, ok := m.properties[key]
	return v, ok
}

func (m *messageEventArgs) SetProperty(key string, value any) {
	if value == nil {
		delete(m.properties, key)
		return
	}
	if m.properties == nil {
		m.properties = make(map[string]any)
	}
	m.properties[key] = value
}

func (m *messageEventArgs) Keys() []string {
	return slices.Sorted(maps.Keys(m.properties))
}

// Handler receives dispatched messages.
type Handler func(args MessageEventArgs)

// Dispatcher delivers messages to subscribed handlers. It is safe for concurrent use; handlers
// run on the dispatching goroutine.
type Dispatcher interface {
	// Subscribe registers h and returns a function that removes it.
	//
	// Parameters:
	//   - h: the handler
	//
	// Returns:
	//   - func(): removes the handler, safe to call more than once
	Subscribe(h Handler) func()

	// Dispatch calls every subscribed handler with args in subscription order.
	//
	// Parameters:
	//   - args: the message
	//
	// Returns:
	//   - int: the number of handlers called
	Dispatch(args MessageEventArgs) int
}

type dispatcher struct {
	mu       *sync.Mutex
	nextID   int
	handlers map[int]Handler
}

var _ Dispatcher = &dispatcher{}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() Dispatcher {
	return &dispatcher{
		mu:       &sync.Mutex{},
		handlers: make(map[int]Handler),
	}
}

func (d *dispatcher) Subscribe(h Handler) func() {
	if h == nil {
		panic("message: Subscribe requires a handler")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.handlers[id] = h
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers, id)
	}
}

func (d *dispatcher) Dispatch(args MessageEventArgs) int {
	d.mu.Lock()
	ids := slices.Sorted(maps.Keys(d.handlers))
	handlers := make([]Handler, len(ids))
	for i, id := range ids {
		handlers[i] = d.handlers[id]
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(args)
	}
	return len(handlers)
}
