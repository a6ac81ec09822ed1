//go:build darwin

package hotkey

// macOS virtual key codes (kVK_*). kVK_ANSI_A is 0, which collides with the
// unset sentinel, so "A" cannot be bound on this platform.
var keyCodeNames = map[uint16]string{
	0: "A", 1: "S", 2: "D", 3: "F", 4: "H", 5: "G", 6: "Z", 7: "X",
	8: "C", 9: "V", 11: "B", 12: "Q", 13: "W", 14: "E", 15: "R",
	16: "Y", 17: "T", 31: "O", 32: "U", 34: "I", 35: "P", 37: "L",
	38: "J", 40: "K", 45: "N", 46: "M",
	18: "1", 19: "2", 20: "3", 21: "4", 22: "6", 23: "5", 24: "=", 25: "9", 26: "7",
	27: "-", 28: "8", 29: "0", 30: "]", 33: "[", 39: "'", 41: ";", 42: "\\",
	43: ",", 44: "/", 47: ".", 50: "`",
	36: "Return", 48: "Tab", 49: "Space", 51: "Delete", 53: "Escape",
	122: "F1", 120: "F2", 99: "F3", 118: "F4", 96: "F5", 97: "F6",
	98: "F7", 100: "F8", 101: "F9", 109: "F10", 103: "F11", 111: "F12",
	123: "Left", 124: "Right", 125: "Down", 126: "Up",
}

var keyAliases = map[string]uint16{
	"enter":     36,
	"esc":       53,
	"backspace": 51,
	"grave":     50,
	"tilde":     50,
}

var modifierKeyCodes = map[uint16]bool{
	54: true, 55: true, 56: true, 57: true, 58: true,
	59: true, 60: true, 61: true, 62: true, 63: true,
}

// IsModifierKey reports whether code is a bare modifier key.
func IsModifierKey(code uint16) bool {
	return modifierKeyCodes[code]
}
