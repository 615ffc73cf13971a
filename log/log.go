// Package log implements the leveled, structured logger used across the
// receiver, in the shape of the teacher project's own `log` package: a
// package-level root Logger plus New(ctx...) for component-scoped children,
// call-site capture via go-stack/stack, and terminal detection via
// mattn/go-isatty. When stderr is a terminal, output goes through
// mattn/go-colorable and each line carries its call site; lines are never
// colorized.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is a logging level.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Logger is the interface every component in this module logs through.
// Context is passed as alternating key/value pairs, matching the teacher's
// convention (log.Info("message", "key", value, "key2", value2)).
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	New(ctx ...any) Logger
}

type logger struct {
	ctx []any
	h   *handler
}

// New returns a child logger that always includes ctx alongside its own.
func New(ctx ...any) Logger {
	return root.New(ctx...)
}

func (l *logger) New(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &logger{ctx: merged, h: l.h}
}

func (l *logger) write(lvl Lvl, msg string, ctx []any) {
	if lvl > l.h.level() {
		return
	}
	all := make([]any, 0, len(l.ctx)+len(ctx))
	all = append(all, l.ctx...)
	all = append(all, ctx...)
	l.h.emit(record{
		t:    time.Now(),
		lvl:  lvl,
		msg:  msg,
		ctx:  all,
		call: stack.Caller(2),
	})
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any)  { l.write(LvlCrit, msg, ctx) }

type record struct {
	t    time.Time
	lvl  Lvl
	msg  string
	ctx  []any
	call stack.Call
}

type handler struct {
	mu  sync.Mutex
	out io.Writer
	lvl Lvl
	tty bool
}

func (h *handler) level() Lvl {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lvl
}

func (h *handler) setLevel(lvl Lvl) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lvl = lvl
}

func (h *handler) emit(r record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := fmt.Sprintf("%s[%s] %s", r.t.Format("01-02|15:04:05.000"), r.lvl, r.msg)
	for i := 0; i+1 < len(r.ctx); i += 2 {
		line += fmt.Sprintf(" %v=%v", r.ctx[i], r.ctx[i+1])
	}
	if h.tty {
		line += fmt.Sprintf(" %s", fmt.Sprintf("(%+v)", r.call))
	}
	fmt.Fprintln(h.out, line)
}

var root = newRootLogger()

func newRootLogger() *logger {
	out := io.Writer(os.Stderr)
	tty := false
	if f, ok := any(os.Stderr).(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
		if tty {
			out = colorable.NewColorable(f)
		}
	}
	return &logger{h: &handler{out: out, lvl: LvlInfo, tty: tty}}
}

// Root returns the root logger, matching the teacher's log.Root() escape
// hatch for code that predates structured-logger wiring.
func Root() Logger { return root }

// SetLevel adjusts the minimum level the root logger (and all of its
// children, since they share the same handler) emits.
func SetLevel(lvl Lvl) { root.h.setLevel(lvl) }

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }
