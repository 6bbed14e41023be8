package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var (
	// ErrNotTerminal reports that the input file cannot be put into
	// raw mode because it is not a terminal.
	ErrNotTerminal = errors.New("input is not a terminal")

	// ErrRawModeActive reports an EnterRawMode call while a previous
	// raw session is still active. The saved configuration from the
	// first call is kept.
	ErrRawModeActive = errors.New("raw mode already active")
)

// Geometry is the usable screen size in character cells.
type Geometry struct {
	Rows int
	Cols int
}

// Term owns the terminal for one session. It switches the input into
// raw mode and restores the original configuration afterwards; the
// screen geometry is resolved through it as well. The zero value is
// not usable; call NewTerm.
type Term struct {
	in  *os.File
	out *os.File

	origTerm unix.Termios
	raw      bool
	vtime    uint8
}

// NewTerm returns a Term bound to the given input and output files,
// normally os.Stdin and os.Stdout.
func NewTerm(in, out *os.File) *Term {
	return &Term{in: in, out: out, vtime: 1}
}

// SetReadTimeout sets how long a raw-mode read waits before returning
// empty. Granularity is tenths of a second; d rounds up to the next
// tenth and is clamped to the representable range. Takes effect on
// the next EnterRawMode.
func (t *Term) SetReadTimeout(d time.Duration) {
	tenths := (d.Milliseconds() + 99) / 100
	if tenths < 1 {
		tenths = 1
	}
	if tenths > 255 {
		tenths = 255
	}
	t.vtime = uint8(tenths)
}

// EnterRawMode switches the input into raw mode, saving the original
// configuration for ExitRawMode. In raw mode a read returns after the
// configured timeout even when no byte arrived, so callers polling
// for input never hang.
func (t *Term) EnterRawMode() error {
	if t.raw {
		return ErrRawModeActive
	}
	if !term.IsTerminal(int(t.in.Fd())) {
		return ErrNotTerminal
	}

	orig, err := unix.IoctlGetTermios(int(t.in.Fd()), ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("reading terminal attributes: %w", err)
	}
	t.origTerm = *orig

	rawTerm := *orig
	rawTerm.Lflag &^= (unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG)
	rawTerm.Iflag &^= (unix.ICRNL | unix.INPCK | unix.BRKINT | unix.ISTRIP | unix.IXON)
	rawTerm.Oflag &^= (unix.OPOST)
	rawTerm.Cflag |= (unix.CS8)
	rawTerm.Cc[unix.VMIN] = 0
	rawTerm.Cc[unix.VTIME] = t.vtime

	if err := unix.IoctlSetTermios(int(t.in.Fd()), ioctlSetTermios, &rawTerm); err != nil {
		return fmt.Errorf("applying raw attributes: %w", err)
	}
	t.raw = true
	return nil
}

// ExitRawMode restores the configuration saved by EnterRawMode. Safe
// to call when raw mode was never entered or was already restored.
func (t *Term) ExitRawMode() error {
	if !t.raw {
		return nil
	}
	if err := unix.IoctlSetTermios(int(t.in.Fd()), ioctlSetTermios, &t.origTerm); err != nil {
		return fmt.Errorf("restoring terminal attributes: %w", err)
	}
	t.raw = false
	return nil
}

// GetWindowSize resolves the screen geometry, preferring the winsize
// ioctl and falling back to the cursor probe when the ioctl fails or
// reports a zero dimension. The fallback needs raw mode active: the
// probe reply arrives on the input stream and must not be echoed or
// held back until a newline.
func (t *Term) GetWindowSize() (Geometry, error) {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return t.cursorPosition()
	}
	return Geometry{Rows: int(ws.Row), Cols: int(ws.Col)}, nil
}

// cursorPosition measures the screen by parking the cursor at the
// bottom-right corner and asking the terminal where it ended up.
func (t *Term) cursorPosition() (Geometry, error) {
	if _, err := t.out.WriteString(escCursorBottomRight + escCursorQuery); err != nil {
		return Geometry{}, fmt.Errorf("writing cursor probe: %w", err)
	}

	// Collect the reply up to the 'R' terminator. A read yielding no
	// byte means the reply is not coming; the buffer caps how long a
	// malformed reply can string us along.
	var reply [32]byte
	n := 0
	for n < len(reply) {
		if rn, err := t.in.Read(reply[n : n+1]); err != nil || rn != 1 {
			break
		}
		if reply[n] == 'R' {
			break
		}
		n++
	}
	if n == len(reply) || reply[n] != 'R' {
		return Geometry{}, fmt.Errorf("cursor position reply missing terminator: %q", reply[:n])
	}
	return parseCursorReport(reply[:n])
}

// parseCursorReport extracts the geometry from a cursor position
// report of the form ESC [ rows ; cols, terminator already stripped.
func parseCursorReport(reply []byte) (Geometry, error) {
	if len(reply) < 2 || reply[0] != 0x1b || reply[1] != '[' {
		return Geometry{}, fmt.Errorf("malformed cursor position reply: %q", reply)
	}
	var g Geometry
	if _, err := fmt.Sscanf(string(reply[2:]), "%d;%d", &g.Rows, &g.Cols); err != nil {
		return Geometry{}, fmt.Errorf("malformed cursor position reply: %q", reply)
	}
	if g.Rows < 1 || g.Cols < 1 {
		return Geometry{}, fmt.Errorf("degenerate screen size %dx%d", g.Rows, g.Cols)
	}
	return g, nil
}

// EmergencyReset force-restores a usable terminal after a crash, when
// the saved configuration may be unreachable. The cursor is re-shown
// first in case the terminal ignores the full reset.
func EmergencyReset(w io.Writer) {
	io.WriteString(w, escCursorShow)
	io.WriteString(w, escReset)
}
