// Package terminal draws the portal page on a text terminal.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/csg33k/code-portal/internal/domain"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[1;32m"
	ansiRed   = "\033[1;31m"
	ansiDim   = "\033[2m"
	ansiBold  = "\033[1m"
	clearLine = "\r\033[K"
)

// Surface writes notices, the file label and the results table to out.
// On an interactive terminal the loading overlay is a status line that is
// cleared and redrawn around other output.
type Surface struct {
	mu          sync.Mutex
	out         io.Writer
	color       bool
	interactive bool
	overlay     bool
}

// New returns a surface writing plain text to out.
func New(out io.Writer, color, interactive bool) *Surface {
	return &Surface{out: out, color: color, interactive: interactive}
}

// NewStdout inspects stdout: colour and the overlay line are only used on a
// terminal, and colour is off when noColor is set.
func NewStdout(noColor bool) *Surface {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return New(os.Stdout, tty && !noColor, tty)
}

func (s *Surface) paint(code, text string) string {
	if !s.color {
		return text
	}
	return code + text + ansiReset
}

// emit writes text with the overlay line lifted out of the way.
func (s *Surface) emit(text string) {
	if s.overlay {
		io.WriteString(s.out, clearLine)
	}
	io.WriteString(s.out, text)
	if s.overlay {
		io.WriteString(s.out, s.overlayLine())
	}
}

func (s *Surface) overlayLine() string {
	return s.paint(ansiDim, "⏳ working...")
}

func (s *Surface) SetLoading(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.interactive || visible == s.overlay {
		s.overlay = visible && s.interactive
		return
	}
	if visible {
		io.WriteString(s.out, s.overlayLine())
	} else {
		io.WriteString(s.out, clearLine)
	}
	s.overlay = visible
}

func (s *Surface) MountNotice(n domain.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := ansiGreen
	if n.Kind == domain.NoticeError {
		code = ansiRed
	}
	s.emit(s.paint(code, n.Icon()+" "+n.Message) + "\n")
}

// FadeNotice and RemoveNotice are no-ops: printed lines stay in the scrollback.
func (s *Surface) FadeNotice(domain.Notice) {}

func (s *Surface) RemoveNotice(domain.Notice) {}

func (s *Surface) SetFileLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(s.paint(ansiDim, "file: "+label) + "\n")
}

func (s *Surface) RenderTable(t domain.SubmissionTable) {
	var b strings.Builder
	writeTable(&b, t, s.color)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(b.String())
}

// writeTable lays the table out in aligned columns.
func writeTable(w io.Writer, t domain.SubmissionTable, color bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	// escape codes are zero width; keep them out of tabwriter cells
	if color {
		fmt.Fprintln(w, ansiBold+"Submissions"+ansiReset)
	} else {
		fmt.Fprintln(w, "Submissions")
	}
	fmt.Fprintln(tw, strings.Join(domain.Columns[:], "\t"))
	fmt.Fprintln(tw, strings.Repeat("-\t", domain.ColumnCount-1)+"-")
	if t.Empty() {
		tw.Flush()
		fmt.Fprintf(w, "  %s\n", domain.EmptyTableMessage)
		return
	}
	for _, row := range t.Rows {
		cells := make([]string, 0, domain.ColumnCount)
		for _, c := range row.Cells {
			cells = append(cells, sanitize(c))
		}
		names := make([]string, 0, len(row.Actions))
		for _, a := range row.Actions {
			names = append(names, a.Name)
		}
		cells = append(cells, strings.Join(names, "|"))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// sanitize drops control characters from server strings so they cannot
// break the layout or inject escape sequences.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
