package editor

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Version is the release identifier shown in the welcome banner.
const Version = "0.1.0"

// Position is a zero-based cursor location within the content.
type Position struct {
	Row int
	Col int
}

// Screen composes complete frames and delivers each one to the
// terminal in a single write, so a slow connection never shows a
// half-drawn update.
type Screen struct {
	out io.Writer

	// TabStop is the column multiple tab bytes expand to. Values
	// below 1 render with the default of 8.
	TabStop int
	// HideBanner suppresses the welcome banner on empty content.
	HideBanner bool
}

func NewScreen(out io.Writer) *Screen {
	return &Screen{out: out, TabStop: 8}
}

// Refresh builds the frame for the current state and flushes it in
// one write call.
func (s *Screen) Refresh(g Geometry, cur Position, lines []string) error {
	if _, err := s.out.Write(s.Frame(g, cur, lines)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Frame renders one full screen update. The cursor stays hidden while
// every row is repainted and cleared to the line end, then comes back
// at its new spot. The buffer is built fresh per frame and not reused.
func (s *Screen) Frame(g Geometry, cur Position, lines []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(escCursorHide)
	buf.WriteString(escCursorHome)

	for y := 0; y < g.Rows; y++ {
		if y < len(lines) {
			buf.WriteString(clipWidth(s.expandTabs(lines[y]), g.Cols))
		} else if len(lines) == 0 && !s.HideBanner && y == g.Rows/3 {
			s.banner(&buf, g)
		} else {
			buf.WriteByte('~')
		}
		buf.WriteString(escClearLine)
		if y < g.Rows-1 {
			buf.WriteString("\r\n")
		}
	}

	fmt.Fprintf(&buf, escCursorPositionFmt, clamp(cur.Row+1, g.Rows), clamp(cur.Col+1, g.Cols))
	buf.WriteString(escCursorShow)
	return buf.Bytes()
}

// banner writes the centered welcome line, keeping the placeholder
// tilde in the leftmost cell when there is room for it.
func (s *Screen) banner(buf *bytes.Buffer, g Geometry) {
	welcome := clipWidth("Fude editor -- version "+Version, g.Cols)
	padding := (g.Cols - visibleWidth(welcome)) / 2
	if padding > 0 {
		buf.WriteByte('~')
		padding--
	}
	buf.WriteString(strings.Repeat(" ", padding))
	buf.WriteString(welcome)
}

// Clear wipes the display and homes the cursor. Runs on the way out
// of a session so the shell prompt lands on a clean screen.
func (s *Screen) Clear() error {
	if _, err := io.WriteString(s.out, escClearScreen+escCursorHome); err != nil {
		return fmt.Errorf("clearing screen: %w", err)
	}
	return nil
}

// expandTabs rewrites tab bytes as spaces up to the next tab stop.
func (s *Screen) expandTabs(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	stop := s.TabStop
	if stop < 1 {
		stop = 8
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			b.WriteByte(' ')
			col++
			for col%stop != 0 {
				b.WriteByte(' ')
				col++
			}
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func clamp(v, limit int) int {
	if v < 1 {
		return 1
	}
	if v > limit {
		return limit
	}
	return v
}

// visibleWidth returns the display width of s in terminal cells,
// counting grapheme clusters rather than bytes so East Asian
// characters and emoji take their true two cells.
func visibleWidth(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += clusterWidth(cluster)
	}
	return w
}

// clipWidth truncates s so its display width fits cols, never
// splitting a grapheme cluster.
func clipWidth(s string, cols int) string {
	if cols <= 0 {
		return ""
	}
	if isPlainASCII(s) {
		if len(s) > cols {
			return s[:cols]
		}
		return s
	}
	w := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		cluster, tail, _, nextState := uniseg.FirstGraphemeClusterInString(rest, state)
		cw := clusterWidth(cluster)
		if w+cw > cols {
			return s[:len(s)-len(rest)]
		}
		w += cw
		rest = tail
		state = nextState
	}
	return s
}

// isPlainASCII reports whether s is printable ASCII only, the fast
// path that skips grapheme segmentation.
func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// clusterWidth returns the display width of one grapheme cluster,
// taken from its first rune.
func clusterWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}
