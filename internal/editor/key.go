package editor

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Key is one decoded keypress. Values below 256 are the literal input
// byte; keys composed from escape sequences start above the byte
// range so the two can never collide.
type Key int

const (
	KeyArrowLeft Key = iota + 1000
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// KeyEscape is a bare ESC press, and also what any unrecognized
	// escape sequence degrades to.
	KeyEscape
)

// Ctrl returns the key the terminal sends for Ctrl plus c.
func Ctrl(c byte) Key {
	return Key(c & 0x1f)
}

// Escape sequence continuations, per the VT100/xterm legacy layout.
// csiTildeKeys covers ESC [ digit ~, csiLetterKeys covers ESC [
// letter, ss3Keys covers ESC O letter.
var csiTildeKeys = map[byte]Key{
	'1': KeyHome,
	'3': KeyDelete,
	'4': KeyEnd,
	'5': KeyPageUp,
	'6': KeyPageDown,
	'7': KeyHome,
	'8': KeyEnd,
}

var csiLetterKeys = map[byte]Key{
	'A': KeyArrowUp,
	'B': KeyArrowDown,
	'C': KeyArrowRight,
	'D': KeyArrowLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

var ss3Keys = map[byte]Key{
	'H': KeyHome,
	'F': KeyEnd,
}

// Decoder turns the raw input byte stream into Keys. In production it
// reads the raw-mode terminal; tests feed it any byte stream.
type Decoder struct {
	in io.Reader
}

func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{in: in}
}

// ReadKey blocks until the next keypress and decodes it. Timed-out
// empty reads are retried, so the only errors out of here are real
// I/O failures on the input stream.
func (d *Decoder) ReadKey() (Key, error) {
	var buf [1]byte
	for {
		n, err := d.in.Read(buf[:])
		if n == 1 {
			break
		}
		if err != nil && !retryable(err) {
			return 0, fmt.Errorf("reading key: %w", err)
		}
	}

	if buf[0] != 0x1b {
		return Key(buf[0]), nil
	}
	return d.readEscape()
}

// readEscape decodes the continuation of an ESC byte. Each follow-up
// byte gets a single bounded read; when the stream yields nothing the
// sequence resolves as a bare escape rather than blocking. Anything
// outside the tables above also resolves as a bare escape.
func (d *Decoder) readEscape() (Key, error) {
	var seq [3]byte
	var ok bool
	if seq[0], ok = d.next(); !ok {
		return KeyEscape, nil
	}
	if seq[1], ok = d.next(); !ok {
		return KeyEscape, nil
	}

	switch seq[0] {
	case '[':
		if seq[1] >= '0' && seq[1] <= '9' {
			if seq[2], ok = d.next(); !ok {
				return KeyEscape, nil
			}
			if seq[2] == '~' {
				if key, found := csiTildeKeys[seq[1]]; found {
					return key, nil
				}
			}
		} else if key, found := csiLetterKeys[seq[1]]; found {
			return key, nil
		}
	case 'O':
		if key, found := ss3Keys[seq[1]]; found {
			return key, nil
		}
	}
	return KeyEscape, nil
}

// next makes a single attempt at one continuation byte. With VMIN=0
// and VTIME set, a lone ESC yields nothing further within the timeout
// window and the attempt comes back empty.
func (d *Decoder) next() (byte, bool) {
	var buf [1]byte
	if n, _ := d.in.Read(buf[:]); n != 1 {
		return 0, false
	}
	return buf[0], true
}

// retryable reports whether a failed read should be attempted again.
// A raw-mode read that times out delivers zero bytes, which the os
// layer surfaces as io.EOF; EINTR and EAGAIN come from signal
// interruption or a nonblocking descriptor.
func retryable(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN)
}
