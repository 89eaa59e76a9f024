package system

import "encoding/binary"

// KeyCode is a Linux input-event-codes.h key code.
type KeyCode uint16

const (
	KeyS  KeyCode = 31
	KeyF4 KeyCode = 62
)

const (
	evKey = 0x01

	keyPressed = 1
)

// parseKeyPresses walks buf as a sequence of input_event records
// (timeval, u16 type, u16 code, s32 value) and reports every key press.
// Releases, autorepeat and non-key events are skipped.
func parseKeyPresses(buf []byte, tvSize int, pressed func(KeyCode)) {
	eventSize := tvSize + 2 + 2 + 4
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ == evKey && value == keyPressed {
			pressed(KeyCode(code))
		}
	}
}
