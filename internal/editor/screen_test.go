package editor

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

// frameRows strips the frame envelope and returns the emitted screen
// rows, failing the test if the envelope is malformed.
func frameRows(t *testing.T, frame string) []string {
	t.Helper()
	prefix := escCursorHide + escCursorHome
	if !strings.HasPrefix(frame, prefix) {
		t.Fatalf("frame does not start with hide+home, got %q", frame[:min(len(frame), 16)])
	}
	if !strings.HasSuffix(frame, escCursorShow) {
		t.Fatalf("frame does not end with show-cursor, got %q", frame[max(0, len(frame)-16):])
	}
	body := strings.TrimPrefix(frame, prefix)
	body = strings.TrimSuffix(body, escCursorShow)

	// The cursor position sequence sits after the last row.
	idx := strings.LastIndex(body, "\x1b[")
	if idx < 0 || !strings.HasSuffix(body[idx:], "H") {
		t.Fatalf("frame missing cursor position before show, tail %q", body[max(0, len(body)-24):])
	}
	rows := strings.Split(body[:idx], "\r\n")
	for i, row := range rows {
		if !strings.HasSuffix(row, escClearLine) {
			t.Fatalf("row %d not erased to end of line: %q", i, row)
		}
		rows[i] = strings.TrimSuffix(row, escClearLine)
	}
	return rows
}

func TestFrameEmitsExactlyRows(t *testing.T) {
	t.Parallel()

	s := NewScreen(io.Discard)
	tests := []struct {
		name  string
		g     Geometry
		lines []string
	}{
		{name: "empty content", g: Geometry{Rows: 24, Cols: 80}},
		{name: "partial content", g: Geometry{Rows: 10, Cols: 40}, lines: []string{"one", "two"}},
		{name: "overflowing content", g: Geometry{Rows: 3, Cols: 40}, lines: []string{"a", "b", "c", "d", "e"}},
		{name: "single row", g: Geometry{Rows: 1, Cols: 10}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frame := string(s.Frame(tt.g, Position{}, tt.lines))
			rows := frameRows(t, frame)
			if len(rows) != tt.g.Rows {
				t.Errorf("frame has %d rows, want %d", len(rows), tt.g.Rows)
			}
			if strings.Count(frame, escClearLine) != tt.g.Rows {
				t.Errorf("frame has %d erase sequences, want %d", strings.Count(frame, escClearLine), tt.g.Rows)
			}
			if strings.Count(frame, "\r\n") != tt.g.Rows-1 {
				t.Errorf("frame has %d row separators, want %d", strings.Count(frame, "\r\n"), tt.g.Rows-1)
			}
		})
	}
}

func TestFrameBannerPlacement(t *testing.T) {
	t.Parallel()

	s := NewScreen(io.Discard)
	frame := string(s.Frame(Geometry{Rows: 24, Cols: 80}, Position{}, nil))
	rows := frameRows(t, frame)

	welcome := "Fude editor -- version " + Version
	padding := (80 - len(welcome)) / 2
	wantBanner := "~" + strings.Repeat(" ", padding-1) + welcome
	if rows[8] != wantBanner {
		t.Errorf("banner row = %q, want %q", rows[8], wantBanner)
	}

	for i, row := range rows {
		if i == 8 {
			continue
		}
		if row != "~" {
			t.Errorf("row %d = %q, want placeholder tilde", i, row)
		}
	}
}

func TestFrameBannerSuppressed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*Screen)
		lines []string
	}{
		{name: "hidden by config", setup: func(s *Screen) { s.HideBanner = true }},
		{name: "content present", lines: []string{"text"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewScreen(io.Discard)
			if tt.setup != nil {
				tt.setup(s)
			}
			frame := string(s.Frame(Geometry{Rows: 24, Cols: 80}, Position{}, tt.lines))
			if strings.Contains(frame, "Fude editor") {
				t.Errorf("banner present in frame: %q", frame)
			}
		})
	}
}

func TestFrameNarrowBannerDropsTilde(t *testing.T) {
	t.Parallel()

	s := NewScreen(io.Discard)
	frame := string(s.Frame(Geometry{Rows: 6, Cols: 10}, Position{}, nil))
	rows := frameRows(t, frame)

	// No room to center: the banner is clipped flush left, tilde
	// omitted.
	if rows[2] != "Fude edito" {
		t.Errorf("narrow banner row = %q, want %q", rows[2], "Fude edito")
	}
}

func TestFrameClipsToDisplayWidth(t *testing.T) {
	t.Parallel()

	s := NewScreen(io.Discard)
	tests := []struct {
		name string
		cols int
		line string
		want string
	}{
		{name: "ascii overflow", cols: 4, line: "abcdef", want: "abcd"},
		{name: "ascii fits", cols: 10, line: "abc", want: "abc"},
		{name: "wide runes", cols: 4, line: "日本語", want: "日本"},
		{name: "wide rune split refused", cols: 3, line: "日本", want: "日"},
		{name: "mixed width", cols: 4, line: "a日本", want: "a日"},
		{name: "empty line", cols: 4, line: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frame := string(s.Frame(Geometry{Rows: 1, Cols: tt.cols}, Position{}, []string{tt.line}))
			rows := frameRows(t, frame)
			if rows[0] != tt.want {
				t.Errorf("clipped row = %q, want %q", rows[0], tt.want)
			}
		})
	}
}

func TestFrameExpandsTabs(t *testing.T) {
	t.Parallel()

	s := NewScreen(io.Discard)
	s.TabStop = 4
	frame := string(s.Frame(Geometry{Rows: 1, Cols: 20}, Position{}, []string{"a\tb\tc"}))
	rows := frameRows(t, frame)
	if want := "a   b   c"; rows[0] != want {
		t.Errorf("expanded row = %q, want %q", rows[0], want)
	}
}

func TestFrameZeroTabStopFallsBack(t *testing.T) {
	t.Parallel()

	// A Screen built by hand rather than NewScreen carries TabStop 0;
	// tabs still have to expand instead of dividing by zero.
	s := &Screen{out: io.Discard}
	frame := string(s.Frame(Geometry{Rows: 1, Cols: 20}, Position{}, []string{"a\tb"}))
	rows := frameRows(t, frame)
	if want := "a       b"; rows[0] != want {
		t.Errorf("expanded row = %q, want %q", rows[0], want)
	}
}

func TestFrameCursorPosition(t *testing.T) {
	t.Parallel()

	s := NewScreen(io.Discard)
	g := Geometry{Rows: 5, Cols: 10}
	tests := []struct {
		name string
		cur  Position
		want string
	}{
		{name: "origin", cur: Position{}, want: "\x1b[1;1H"},
		{name: "interior", cur: Position{Row: 2, Col: 3}, want: "\x1b[3;4H"},
		{name: "clamped to geometry", cur: Position{Row: 99, Col: 99}, want: "\x1b[5;10H"},
		{name: "negative clamped home", cur: Position{Row: -3, Col: -7}, want: "\x1b[1;1H"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frame := string(s.Frame(g, tt.cur, nil))
			if !strings.HasSuffix(frame, tt.want+escCursorShow) {
				t.Errorf("frame tail = %q, want position %q before show-cursor",
					frame[max(0, len(frame)-20):], tt.want)
			}
		})
	}
}

// countingWriter tracks write calls so tests can assert a frame went
// out in one piece.
type countingWriter struct {
	writes int
	buf    bytes.Buffer
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

func TestRefreshSingleWrite(t *testing.T) {
	t.Parallel()

	w := &countingWriter{}
	s := NewScreen(w)
	if err := s.Refresh(Geometry{Rows: 4, Cols: 20}, Position{}, []string{"hello"}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if w.writes != 1 {
		t.Errorf("Refresh issued %d writes, want 1", w.writes)
	}
	if !bytes.Contains(w.buf.Bytes(), []byte("hello")) {
		t.Error("flushed frame missing content")
	}
}

func TestRefreshReportsWriteFailure(t *testing.T) {
	t.Parallel()

	s := NewScreen(failWriter{})
	err := s.Refresh(Geometry{Rows: 2, Cols: 10}, Position{}, nil)
	if err == nil {
		t.Fatal("Refresh succeeded on a failing writer")
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("display gone")
}

func TestClearBytes(t *testing.T) {
	t.Parallel()

	w := &countingWriter{}
	s := NewScreen(w)
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := w.buf.String(); got != escClearScreen+escCursorHome {
		t.Errorf("Clear wrote %q, want %q", got, escClearScreen+escCursorHome)
	}
}
