package editor

import (
	"log"
	"os"
	"os/signal"
	"syscall"
)

// State is the collaborator driven by the session loop: it receives
// every decoded key and tells the session where the cursor sits and
// which lines to draw. HandleKey returns true to end the session.
type State interface {
	HandleKey(k Key, g Geometry) bool
	Cursor() Position
	Lines() []string
}

// Session wires terminal, screen, decoder and state into the editor
// loop. Everything runs on the calling goroutine; only the resize
// signal arrives from outside and is folded in between frames.
type Session struct {
	term    *Term
	screen  *Screen
	keys    *Decoder
	state   State
	geom    Geometry
	resized chan os.Signal
}

func NewSession(t *Term, s *Screen, st State) *Session {
	return &Session{
		term:   t,
		screen: s,
		keys:   NewDecoder(t.in),
		state:  st,
	}
}

// Run enters raw mode, resolves the geometry, then cycles render,
// read, dispatch until the state requests exit or something fails.
// The terminal is restored and the screen cleared on every way out,
// with the clear written first so those are the final output bytes.
func (s *Session) Run() (err error) {
	if err = s.term.EnterRawMode(); err != nil {
		return err
	}
	defer func() {
		if rerr := s.term.ExitRawMode(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	defer s.screen.Clear()

	if s.geom, err = s.term.GetWindowSize(); err != nil {
		return err
	}

	// Start from a wiped screen: the geometry probe may have parked
	// the cursor at the bottom-right corner.
	if err = s.screen.Clear(); err != nil {
		return err
	}

	s.resized = make(chan os.Signal, 1)
	signal.Notify(s.resized, syscall.SIGWINCH)
	defer signal.Stop(s.resized)

	for {
		select {
		case <-s.resized:
			g, gerr := s.term.GetWindowSize()
			if gerr != nil {
				return gerr
			}
			log.Printf("resized to %dx%d", g.Rows, g.Cols)
			s.geom = g
		default:
		}

		if err = s.screen.Refresh(s.geom, s.state.Cursor(), s.state.Lines()); err != nil {
			return err
		}

		key, kerr := s.keys.ReadKey()
		if kerr != nil {
			return kerr
		}
		if s.state.HandleKey(key, s.geom) {
			return nil
		}
	}
}

// Document is the built-in state: cursor-only navigation over an
// in-memory snapshot of lines. Keys that would edit text are ignored;
// Ctrl-Q requests exit.
type Document struct {
	pos   Position
	lines []string
}

func NewDocument(lines []string) *Document {
	return &Document{lines: lines}
}

func (d *Document) Cursor() Position { return d.pos }

func (d *Document) Lines() []string { return d.lines }

func (d *Document) HandleKey(k Key, g Geometry) bool {
	switch k {
	case Ctrl('q'):
		return true
	case KeyArrowLeft, KeyArrowRight, KeyArrowUp, KeyArrowDown:
		d.move(k)
	case KeyHome:
		d.pos.Col = 0
	case KeyEnd:
		d.pos.Col = d.lineLen(d.pos.Row)
	case KeyPageUp:
		for i := 0; i < g.Rows; i++ {
			d.move(KeyArrowUp)
		}
	case KeyPageDown:
		for i := 0; i < g.Rows; i++ {
			d.move(KeyArrowDown)
		}
	}
	return false
}

// move applies one arrow step. Left and right wrap across line ends;
// the cursor may sit one row past the last line, and the column snaps
// to the line length after every vertical move.
func (d *Document) move(k Key) {
	switch k {
	case KeyArrowLeft:
		if d.pos.Col > 0 {
			d.pos.Col--
		} else if d.pos.Row > 0 {
			d.pos.Row--
			d.pos.Col = d.lineLen(d.pos.Row)
		}
	case KeyArrowRight:
		if d.pos.Col < d.lineLen(d.pos.Row) {
			d.pos.Col++
		} else if d.pos.Row < len(d.lines) {
			d.pos.Row++
			d.pos.Col = 0
		}
	case KeyArrowUp:
		if d.pos.Row > 0 {
			d.pos.Row--
		}
	case KeyArrowDown:
		if d.pos.Row < len(d.lines) {
			d.pos.Row++
		}
	}
	if d.pos.Col > d.lineLen(d.pos.Row) {
		d.pos.Col = d.lineLen(d.pos.Row)
	}
}

func (d *Document) lineLen(row int) int {
	if row < 0 || row >= len(d.lines) {
		return 0
	}
	return len(d.lines[row])
}
