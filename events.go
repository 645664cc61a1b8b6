package skematree

// EventName identifies a node event.
type EventName string

const (
	// EventChange fires when a node's own data changed.
	EventChange EventName = "change"
	// EventChildChange bubbles a change from any descendant; Origin is the changed node.
	EventChildChange EventName = "childChange"
	// EventReplace asks the owning container to swap the node for Value.
	EventReplace EventName = "replace"
	// EventRemoveFrom tells a node it was detached from Container.
	EventRemoveFrom EventName = "removeFrom"
	// EventValidation reports the outcome of an assignment attempt.
	EventValidation EventName = "validation"
	// EventResolveUp carries unresolved references to higher ancestors.
	EventResolveUp EventName = "resolveUp"

	eventAddedElement EventName = "addedElement"
)

// Op describes what a change event did.
type Op string

const (
	OpSet    Op = "set"
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpID     Op = "id"
	OpIsUsed Op = "isUsed"
	OpValue  Op = "value"
)

// Status is the outcome carried by validation events.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Event is delivered to handlers registered with Node.On.
type Event struct {
	Name   EventName
	Source Node
	Op     Op
	// Key is the index (int) or key (string) the change applies to.
	Key   any
	Value any
	Old   any
	// Origin is the node whose data changed (childChange only).
	Origin    Node
	Status    Status
	Message   string
	Container Node
	Pending   []*Deferred
}

// Handler receives events.
type Handler func(Event)

// Listener is the handle returned by On; pass it to Off to unsubscribe.
type Listener struct {
	name EventName
	fn   Handler
}

type channel struct {
	listeners map[EventName][]*Listener
}

func (c *channel) on(name EventName, fn Handler) *Listener {
	if c.listeners == nil {
		c.listeners = map[EventName][]*Listener{}
	}
	l := &Listener{name: name, fn: fn}
	c.listeners[name] = append(c.listeners[name], l)
	return l
}

func (c *channel) off(name EventName, l *Listener) {
	ls := c.listeners[name]
	for i, cur := range ls {
		if cur == l {
			// Copy so an in-flight snapshot keeps its backing array.
			next := make([]*Listener, 0, len(ls)-1)
			next = append(next, ls[:i]...)
			next = append(next, ls[i+1:]...)
			c.listeners[name] = next
			return
		}
	}
}

// emit calls every handler registered when dispatch starts, in order.
func (c *channel) emit(ev Event) {
	snapshot := c.listeners[ev.Name]
	for _, l := range snapshot {
		l.fn(ev)
	}
}

func (c *channel) count(name EventName) int { return len(c.listeners[name]) }
