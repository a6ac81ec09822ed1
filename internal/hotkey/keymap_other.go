//go:build !darwin

package hotkey

// libuiohook virtual key codes, which follow PC scan code set 1 (and the
// Linux evdev numbering for the main block).
var keyCodeNames = map[uint16]string{
	0x1E: "A", 0x30: "B", 0x2E: "C", 0x20: "D", 0x12: "E", 0x21: "F",
	0x22: "G", 0x23: "H", 0x17: "I", 0x24: "J", 0x25: "K", 0x26: "L",
	0x32: "M", 0x31: "N", 0x18: "O", 0x19: "P", 0x10: "Q", 0x13: "R",
	0x1F: "S", 0x14: "T", 0x16: "U", 0x2F: "V", 0x11: "W", 0x2D: "X",
	0x15: "Y", 0x2C: "Z",
	0x02: "1", 0x03: "2", 0x04: "3", 0x05: "4", 0x06: "5",
	0x07: "6", 0x08: "7", 0x09: "8", 0x0A: "9", 0x0B: "0",
	0x0C: "-", 0x0D: "=", 0x1A: "[", 0x1B: "]", 0x2B: "\\",
	0x27: ";", 0x28: "'", 0x33: ",", 0x34: ".", 0x35: "/", 0x29: "`",
	0x1C: "Return", 0x0F: "Tab", 0x39: "Space", 0x0E: "Delete", 0x01: "Escape",
	0x3B: "F1", 0x3C: "F2", 0x3D: "F3", 0x3E: "F4", 0x3F: "F5", 0x40: "F6",
	0x41: "F7", 0x42: "F8", 0x43: "F9", 0x44: "F10", 0x57: "F11", 0x58: "F12",
	0xE04B: "Left", 0xE04D: "Right", 0xE050: "Down", 0xE048: "Up",
}

var keyAliases = map[string]uint16{
	"enter":     0x1C,
	"esc":       0x01,
	"backspace": 0x0E,
	"grave":     0x29,
	"tilde":     0x29,
}

var modifierKeyCodes = map[uint16]bool{
	0x2A: true, 0x36: true, // shift
	0x1D: true, 0x0E1D: true, // control
	0x38: true, 0x0E38: true, // alt
	0x0E5B: true, 0x0E5C: true, // meta
	0x3A: true, // caps lock
}

// IsModifierKey reports whether code is a bare modifier key.
func IsModifierKey(code uint16) bool {
	return modifierKeyCodes[code]
}
