package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger writes human-readable lines. Colors are used only
// when the output is a terminal.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  map[string]any
	palette palette
}

type palette struct {
	info, warn, err, debug, dim *color.Color
}

func newPalette(colored bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		info:  mk(color.FgBlue),
		warn:  mk(color.FgYellow),
		err:   mk(color.FgRed, color.Bold),
		debug: mk(color.FgHiBlack),
		dim:   mk(color.FgHiBlack),
	}
}

// NewConsoleLogger creates a console logger writing to w, or to
// stdout when w is nil. When verbose is true, debug messages are
// emitted.
func NewConsoleLogger(w io.Writer, verbose bool) *ConsoleLogger {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleLogger{
		mu:      &sync.Mutex{},
		output:  w,
		verbose: verbose,
		fields:  make(map[string]any),
		palette: newPalette(IsTerminal(w)),
	}
}

// IsTerminal reports whether w is a terminal that accepts color.
func IsTerminal(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *ConsoleLogger) log(
	level LogLevel, tint *color.Color, msg string, fields ...Field,
) {
	merged := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var fieldStr string
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
		}
		fieldStr = " " + c.palette.dim.Sprintf(
			"{%s}", strings.Join(parts, ", "),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(
		c.output, "%s [%s] %s%s\n",
		c.palette.dim.Sprint(time.Now().Format("15:04:05")),
		tint.Sprintf("%-5s", level.String()),
		msg, fieldStr,
	)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, c.palette.info, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, c.palette.warn, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, c.palette.err, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, c.palette.debug, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields. The child shares the parent's output lock.
func (c *ConsoleLogger) WithFields(fields ...Field) Logger {
	newFields := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}
	return &ConsoleLogger{
		mu:      c.mu,
		output:  c.output,
		verbose: c.verbose,
		fields:  newFields,
		palette: c.palette,
	}
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
