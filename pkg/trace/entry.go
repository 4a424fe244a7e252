package trace

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/henderiw/intervalset/pkg/format"
)

type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	case LevelFatal:
		return "Fatal"
	}
	return "Unknown"
}

type Event int

const (
	EventCalling Event = iota
	EventEnter
	EventReturn
	EventError
	EventMessage
)

func (e Event) String() string {
	switch e {
	case EventCalling:
		return "calls"
	case EventEnter:
		return "enters"
	case EventReturn:
		return "returns"
	case EventError:
		return "fails"
	}
	return "says"
}

// Frame is a single call site.
type Frame struct {
	Function string
	File     string
	Line     int
}

func (f Frame) String() string {
	return fmt.Sprintf("%s %s:%d", f.Function, filepath.Base(f.File), f.Line)
}

// callers returns the frame of the function calling a tracer method and the
// frame of its caller. Tracer methods call it with skip 1.
func callers(skip int) (Frame, Frame) {
	pcs := make([]uintptr, 2)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var out [2]Frame
	for i := 0; i < 2; i++ {
		f, more := frames.Next()
		out[i] = Frame{Function: f.Function, File: f.File, Line: f.Line}
		if !more {
			break
		}
	}
	return out[0], out[1]
}

type Entry struct {
	Time    time.Time
	Frame   Frame
	Nesting int
	Event   Event
	Level   Level
	Value   any
}

func (e Entry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Time.Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" ")
	sb.WriteString(strings.Repeat("  ", e.Nesting))
	if e.Level != LevelUnknown {
		sb.WriteString(e.Level.String())
		sb.WriteString(": ")
	}
	sb.WriteString(e.Frame.String())
	sb.WriteString(" ")
	sb.WriteString(e.Event.String())
	if e.Value != nil {
		sb.WriteString(": ")
		sb.WriteString(format.Formatted(e.Value))
	}
	return sb.String()
}
