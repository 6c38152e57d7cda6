// Package input turns the device's abstract button events into screen
// navigation, new-match selection and fully specified chess moves. The move
// workflow is a five-step state machine persisted as an opaque blob on the
// owning game, so it survives across requests and device reconnects.
package input

// Button identifies one of the device's physical buttons.
type Button string

const (
	Btn1    Button = "BTN_1"
	Btn2    Button = "BTN_2"
	Btn3    Button = "BTN_3"
	Btn4    Button = "BTN_4"
	Btn5    Button = "BTN_5"
	Btn6    Button = "BTN_6"
	Btn7    Button = "BTN_7"
	Btn8    Button = "BTN_8"
	Enter   Button = "ENTER"
	Esc     Button = "ESC"
	HLLeft  Button = "HL_LEFT"
	HLRight Button = "HL_RIGHT"
)

// EventType is how the button was actuated. PRESS and RELEASE drive the
// normal per-screen workflows; a LONG_PRESS on the play screen maps to
// game-level actions (ESC resigns or aborts, ENTER offers a draw).
type EventType string

const (
	Press     EventType = "PRESS"
	LongPress EventType = "LONG_PRESS"
	Release   EventType = "RELEASE"
)

// Fixed lookup tables for the eight generic buttons, indexed by ordinal.
var (
	pieceTokens = [8]string{"P", "N", "B", "R", "Q", "K", "O-O", "O-O-O"}
	fileLetters = [8]byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h'}
)

// numberedButtons maps ordinals back to buttons for hint tables.
var numberedButtons = [8]Button{Btn1, Btn2, Btn3, Btn4, Btn5, Btn6, Btn7, Btn8}

// ordinal returns the zero-based index of a generic button, or false for
// ENTER/ESC/navigation buttons.
func ordinal(b Button) (int, bool) {
	switch b {
	case Btn1:
		return 0, true
	case Btn2:
		return 1, true
	case Btn3:
		return 2, true
	case Btn4:
		return 3, true
	case Btn5:
		return 4, true
	case Btn6:
		return 5, true
	case Btn7:
		return 6, true
	case Btn8:
		return 7, true
	}
	return 0, false
}

// ValidButton reports whether the wire value names a known button.
func ValidButton(b Button) bool {
	if _, ok := ordinal(b); ok {
		return true
	}
	switch b {
	case Enter, Esc, HLLeft, HLRight:
		return true
	}
	return false
}
