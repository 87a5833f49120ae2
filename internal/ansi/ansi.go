// Package ansi provides the SGR escape codes used by the line-oriented
// printer, and decides whether a writer should receive them.
package ansi

import (
	"io"
	"os"
	"regexp"

	"github.com/mattn/go-isatty"
)

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Blue    = "\033[34m"
	Yellow  = "\033[33m"
	Green   = "\033[32m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"
)

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// Strip removes SGR sequences from s.
func Strip(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}

// Enabled reports whether w is a terminal that should receive color.
// NO_COLOR (https://no-color.org) disables color everywhere.
func Enabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewWriter returns w unchanged when it takes color, and otherwise a writer
// that strips SGR sequences before writing.
func NewWriter(w io.Writer) io.Writer {
	if Enabled(w) {
		return w
	}
	return plainWriter{w: w}
}

type plainWriter struct {
	w io.Writer
}

// Write strips escape codes from p. It reports len(p) on success so callers
// see the bytes they handed in as consumed.
func (p plainWriter) Write(b []byte) (int, error) {
	if _, err := io.WriteString(p.w, Strip(string(b))); err != nil {
		return 0, err
	}
	return len(b), nil
}
