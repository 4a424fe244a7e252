package trace

import (
	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
)

type Tracer interface {
	// Trace records a message.
	Trace(level Level, message func() string)
	// Invoke runs fn and records the call, its params and its outcome.
	Invoke(fn func() (any, error), params ...any) (any, error)
	Traces() []any
	Clear()
	// OnTrace maps every entry before it is recorded. Returning nil drops
	// the entry.
	OnTrace(action func(Entry) any)
}

// recorder is shared by the tracers that produce entries.
type recorder struct {
	clock   clock.PassiveClock
	nesting int
	onTrace func(Entry) any
	sink    func(any)
}

func (r *recorder) record(frame Frame, event Event, level Level, value any) {
	v := r.onTrace(Entry{
		Time:    r.clock.Now(),
		Frame:   frame,
		Nesting: r.nesting,
		Event:   event,
		Level:   level,
		Value:   value,
	})
	if v != nil {
		r.sink(v)
	}
}

func (r *recorder) invoke(enter, calling Frame, fn func() (any, error), params []any) (any, error) {
	var p any
	if len(params) > 0 {
		p = params
	}
	var failure error
	return Interceptor{
		Before: func() {
			r.record(calling, EventCalling, LevelUnknown, nil)
			r.record(enter, EventEnter, LevelUnknown, p)
			r.nesting++
		},
		OnError: func(err error) {
			failure = err
		},
		After: func(result any) {
			r.nesting--
			if failure != nil {
				r.record(enter, EventError, LevelUnknown, failure)
				return
			}
			r.record(enter, EventReturn, LevelUnknown, result)
		},
	}.Invoke(fn)
}

func (r *recorder) setOnTrace(action func(Entry) any) {
	if action == nil {
		action = func(e Entry) any { return e }
	}
	r.onTrace = action
}

// BufferTracer keeps the entries in memory. It is not safe for concurrent
// use.
type BufferTracer struct {
	recorder
	traces []any
}

func NewBufferTracer(c clock.PassiveClock) *BufferTracer {
	r := &BufferTracer{}
	r.clock = c
	r.sink = func(v any) { r.traces = append(r.traces, v) }
	r.setOnTrace(nil)
	return r
}

func (r *BufferTracer) Trace(level Level, message func() string) {
	frame, _ := callers(1)
	r.record(frame, EventMessage, level, message())
}

func (r *BufferTracer) Invoke(fn func() (any, error), params ...any) (any, error) {
	enter, calling := callers(1)
	return r.invoke(enter, calling, fn, params)
}

func (r *BufferTracer) Traces() []any {
	return append([]any(nil), r.traces...)
}

func (r *BufferTracer) Clear() {
	r.traces = nil
}

func (r *BufferTracer) OnTrace(action func(Entry) any) {
	r.setOnTrace(action)
}

// LogTracer writes the entries to a logger at verbosity 1.
type LogTracer struct {
	recorder
}

func NewLogTracer(l logr.Logger) *LogTracer {
	r := &LogTracer{}
	r.clock = clock.RealClock{}
	r.sink = func(v any) {
		if e, ok := v.(Entry); ok {
			l.V(1).Info(e.Event.String(),
				"func", e.Frame.Function,
				"line", e.Frame.Line,
				"nesting", e.Nesting,
				"level", e.Level.String(),
				"value", e.Value)
			return
		}
		l.V(1).Info("trace", "value", v)
	}
	r.setOnTrace(nil)
	return r
}

func (r *LogTracer) Trace(level Level, message func() string) {
	frame, _ := callers(1)
	r.record(frame, EventMessage, level, message())
}

func (r *LogTracer) Invoke(fn func() (any, error), params ...any) (any, error) {
	enter, calling := callers(1)
	return r.invoke(enter, calling, fn, params)
}

func (r *LogTracer) Traces() []any { return nil }

func (r *LogTracer) Clear() {}

func (r *LogTracer) OnTrace(action func(Entry) any) {
	r.setOnTrace(action)
}

// NotTracer records nothing.
type NotTracer struct{}

func (NotTracer) Trace(Level, func() string) {}

func (NotTracer) Invoke(fn func() (any, error), _ ...any) (any, error) {
	return fn()
}

func (NotTracer) Traces() []any { return nil }

func (NotTracer) Clear() {}

func (NotTracer) OnTrace(func(Entry) any) {}
