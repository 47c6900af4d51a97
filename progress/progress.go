// Package progress renders a one-line spinner on stderr while an npm command
// runs with its own output hidden. The line shows the latest output line npm
// printed so long installs still show activity.
package progress

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/jongio/npmkit/cliout"
)

// Status is the state of the tracked task.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

const (
	defaultTermWidth = 80
	refreshInterval  = 100 * time.Millisecond
	minDetailWidth   = 10
)

// Enabled reports whether a spinner should be drawn on out: it must be a
// terminal and the command output must not be JSON.
func Enabled(out *os.File) bool {
	if out == nil || cliout.IsJSON() {
		return false
	}
	return term.IsTerminal(int(out.Fd())) // #nosec G115 -- file descriptors fit in int
}

// Spinner tracks a single running task.
type Spinner struct {
	out         io.Writer
	description string
	width       int
	interval    time.Duration
	now         func() time.Time

	mu        sync.Mutex
	status    Status
	detail    string
	errorMsg  string
	startTime time.Time
	endTime   time.Time
	stopChan  chan struct{}
	done      chan struct{}
}

// New returns a pending spinner for description that draws on out.
func New(out io.Writer, description string) *Spinner {
	return &Spinner{
		out:         out,
		description: description,
		width:       terminalWidth(out),
		interval:    refreshInterval,
		now:         time.Now,
		status:      StatusPending,
	}
}

// terminalWidth prefers COLUMNS, then the size of out, then 80.
func terminalWidth(out io.Writer) int {
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 { // #nosec G115 -- file descriptors fit in int
			return w
		}
	}
	return defaultTermWidth
}

// Start marks the task running and begins redrawing. Calling Start twice is a
// no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPending {
		return
	}
	s.status = StatusRunning
	s.startTime = s.now()
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	fmt.Fprint(s.out, "\033[?25l")
	go s.loop(s.stopChan, s.done)
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.status == StatusRunning {
				fmt.Fprint(s.out, "\r\033[2K"+s.line(s.now()))
			}
			s.mu.Unlock()
		}
	}
}

// Update replaces the detail text with the last non-blank line given. It
// matches cmdutil.OutputLineHandler.
func (s *Spinner) Update(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = line
}

// Complete marks the task successful and draws the final line.
func (s *Spinner) Complete() {
	s.finish(StatusSuccess, "")
}

// Fail marks the task failed and draws the final line with err.
func (s *Spinner) Fail(err error) {
	msg := "failed"
	if err != nil {
		msg = err.Error()
	}
	s.finish(StatusFailed, msg)
}

func (s *Spinner) finish(status Status, errMsg string) {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return
	}
	s.status = status
	s.errorMsg = errMsg
	s.endTime = s.now()
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r\033[2K"+s.line(s.endTime)+"\n\033[?25h")
}

// Status returns the current task status.
func (s *Spinner) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// line renders the spinner line at t. The caller holds s.mu.
func (s *Spinner) line(t time.Time) string {
	elapsed := t.Sub(s.startTime)
	if !s.endTime.IsZero() {
		elapsed = s.endTime.Sub(s.startTime)
	}
	timeStr := fmt.Sprintf("%.1fs", elapsed.Seconds())

	var icon, color, detail string
	switch s.status {
	case StatusSuccess:
		icon, color = symbol(cliout.SymbolCheck, cliout.ASCIICheck), cliout.Green
	case StatusFailed:
		icon, color = symbol(cliout.SymbolCross, cliout.ASCIICross), cliout.Red
		detail = s.errorMsg
	default:
		icon, color = frame(t), cliout.Cyan
		detail = s.detail
	}

	head := icon + " " + s.description
	if detail != "" {
		// icon, spaces and the time suffix
		room := s.width - len([]rune(head)) - len(timeStr) - 4
		if room >= minDetailWidth {
			head += " " + truncate(detail, room)
		}
	}
	head += " " + timeStr

	if cliout.ColorEnabled() {
		return color + head + cliout.Reset
	}
	return head
}

func symbol(unicode, ascii string) string {
	if cliout.UnicodeEnabled() {
		return unicode
	}
	return ascii
}

// frame returns the spinner character for t.
func frame(t time.Time) string {
	if !cliout.UnicodeEnabled() {
		chars := []string{"|", "/", "-", "\\"}
		return chars[(t.UnixNano()/100_000_000)%int64(len(chars))]
	}
	chars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return chars[(t.UnixNano()/80_000_000)%int64(len(chars))]
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
