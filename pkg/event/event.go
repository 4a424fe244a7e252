package event

import (
	"slices"

	"github.com/cockroachdb/errors"
)

var ErrRecursiveInvocation = errors.New("recursive event invocation")

// Token identifies an attached handler.
type Token uint64

type Registry[T any] interface {
	Attach(handler func(T)) Token
	Detach(token Token) bool
}

type Trigger[T any] interface {
	Invoke(e T) error
}

type handlerEntry[T any] struct {
	token   Token
	handler func(T)
}

// Event calls its attached handlers in attach order. Handlers may attach and
// detach while the event is being invoked; the change applies to the next
// invocation. An Event is not safe for concurrent use.
type Event[T any] struct {
	handlers   []handlerEntry[T]
	lastToken  Token
	inProgress bool
}

func New[T any]() *Event[T] {
	return &Event[T]{}
}

func (r *Event[T]) Attach(handler func(T)) Token {
	r.lastToken++
	r.handlers = append(r.handlers, handlerEntry[T]{token: r.lastToken, handler: handler})
	return r.lastToken
}

func (r *Event[T]) Detach(token Token) bool {
	n := len(r.handlers)
	r.handlers = slices.DeleteFunc(slices.Clone(r.handlers), func(h handlerEntry[T]) bool {
		return h.token == token
	})
	return len(r.handlers) != n
}

// Invoke calls every handler with e. Invoking an event from one of its own
// handlers fails with ErrRecursiveInvocation.
func (r *Event[T]) Invoke(e T) error {
	if r.inProgress {
		return ErrRecursiveInvocation
	}
	r.inProgress = true
	defer func() { r.inProgress = false }()

	for _, h := range r.handlers {
		h.handler(e)
	}
	return nil
}

// Clone returns a copy of the event with the same handlers. Attaching or
// detaching on either one does not affect the other.
func (r *Event[T]) Clone() *Event[T] {
	return &Event[T]{
		handlers:  slices.Clone(r.handlers),
		lastToken: r.lastToken,
	}
}

// Len returns the number of attached handlers.
func (r *Event[T]) Len() int {
	return len(r.handlers)
}

// HandleOnce attaches a handler that detaches itself after its first call.
func HandleOnce[T any](reg Registry[T], handler func(T)) Token {
	var token Token
	token = reg.Attach(func(e T) {
		handler(e)
		reg.Detach(token)
	})
	return token
}
