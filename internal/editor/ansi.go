package editor

// VT100/xterm escape sequences used on the wire.
const (
	escClearScreen = "\x1b[2J"
	escClearLine   = "\x1b[K" // erase from cursor to end of line
	escCursorHome  = "\x1b[H" // top-left (1;1)

	escCursorHide = "\x1b[?25l"
	escCursorShow = "\x1b[?25h"

	// Relative moves clamp at the screen edge, so a large argument
	// pair parks the cursor at the bottom-right corner. Used with the
	// position report request to measure the screen when the winsize
	// ioctl is unavailable.
	escCursorBottomRight = "\x1b[999C\x1b[999B"
	escCursorQuery       = "\x1b[6n"

	escCursorPositionFmt = "\x1b[%d;%dH" // 1-based row;col

	escReset = "\x1bc" // RIS, reset to initial state
)
