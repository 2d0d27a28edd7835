// Package output renders timebar results: the single JSON line consumed by
// the status bar, a styled text line for terminals, and plain tables.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/Dicklesworthstone/timebar/internal/status"
)

// Format selects how a status is encoded.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a format name. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("invalid output format %q: must be \"json\" or \"text\"", s)
	}
}

// Formatter writes results to a single writer.
type Formatter struct {
	writer   io.Writer
	format   Format
	renderer *lipgloss.Renderer
}

// New creates a formatter. Colors are only emitted when color is true and
// the writer is a terminal.
func New(w io.Writer, format Format, color bool) *Formatter {
	r := lipgloss.NewRenderer(w)
	if !color || !IsTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Formatter{writer: w, format: format, renderer: r}
}

// Writer returns the underlying writer
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// ColorEnabled reports whether styled output will carry ANSI colors.
func (f *Formatter) ColorEnabled() bool {
	return f.renderer.ColorProfile() != termenv.Ascii
}

// Status writes st as one line in the configured format.
func (f *Formatter) Status(st status.Status) error {
	line, err := f.StatusLine(st)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.writer, line)
	return err
}

// StatusLine encodes st without the trailing newline.
func (f *Formatter) StatusLine(st status.Status) (string, error) {
	if f.format == FormatText {
		return f.textLine(st), nil
	}
	return EncodeStatus(st)
}

// EncodeStatus returns the status bar JSON for st:
// {"class":"<state>","text":"<text>"} plus "tooltip" when set.
func EncodeStatus(st status.Status) (string, error) {
	data, err := marshalNoEscape(st)
	if err != nil {
		return "", fmt.Errorf("encoding status: %w", err)
	}
	return string(data), nil
}

func (f *Formatter) textLine(st status.Status) string {
	style := f.stateStyle(st.State)
	if st.State == status.StateStopped {
		return style.Render(st.State.Icon() + " not tracking")
	}
	label := style.Render(st.State.Icon() + " " + string(st.State))
	return label + " " + st.Text
}

func (f *Formatter) stateStyle(s status.State) lipgloss.Style {
	style := f.renderer.NewStyle().Bold(true)
	switch s {
	case status.StateActive:
		return style.Foreground(lipgloss.Color("#04B575"))
	case status.StatePaused:
		return style.Foreground(lipgloss.Color("#F7DC6F"))
	case status.StateIdle:
		return style.Foreground(lipgloss.Color("#FF6B6B"))
	default:
		return style.Foreground(lipgloss.Color("#888888")).Bold(false)
	}
}

// JSON writes v as indented JSON.
func (f *Formatter) JSON(v interface{}) error {
	enc := json.NewEncoder(f.writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// marshalNoEscape is json.Marshal without HTML escaping, so tags such as
// "R&D" reach the bar unchanged.
func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorRequested applies the NO_COLOR convention on top of the --no-color flag.
func ColorRequested(noColor bool) bool {
	if noColor {
		return false
	}
	_, set := os.LookupEnv("NO_COLOR")
	return !set
}
