// Package hotkey describes global key combinations and the registry that
// maps them to actions.
package hotkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnsetCombination = errors.New("hotkey: combination has no key")
	ErrUnknownKey       = errors.New("hotkey: unknown key")
	ErrUnknownModifier  = errors.New("hotkey: unknown modifier")
)

// Modifier is a set of modifier keys.
type Modifier uint8

const (
	ModCommand Modifier = 1 << iota
	ModOption
	ModControl
	ModShift
)

// modifierOrder is the order modifiers are rendered in.
var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCommand, "Cmd"},
	{ModOption, "Option"},
	{ModControl, "Ctrl"},
	{ModShift, "Shift"},
}

var modifierNames = map[string]Modifier{
	"cmd":     ModCommand,
	"command": ModCommand,
	"super":   ModCommand,
	"meta":    ModCommand,
	"win":     ModCommand,
	"opt":     ModOption,
	"option":  ModOption,
	"alt":     ModOption,
	"ctrl":    ModControl,
	"control": ModControl,
	"shift":   ModShift,
}

// Has reports whether all modifiers in m are present.
func (m Modifier) Has(other Modifier) bool {
	return m&other == other
}

// Combination is a key code plus the modifiers held with it. The zero key
// code means "unset".
type Combination struct {
	KeyCode   uint16   `json:"key_code"`
	Modifiers Modifier `json:"modifiers"`
}

// New builds a combination from a key code and any number of modifiers.
func New(keyCode uint16, mods ...Modifier) Combination {
	var m Modifier
	for _, mod := range mods {
		m |= mod
	}
	return Combination{KeyCode: keyCode, Modifiers: m}
}

// IsSet reports whether the combination carries a key.
func (c Combination) IsSet() bool {
	return c.KeyCode != 0
}

// String renders the combination as "Option+Shift+A".
func (c Combination) String() string {
	if !c.IsSet() {
		return "None"
	}

	var parts []string
	for _, mo := range modifierOrder {
		if c.Modifiers.Has(mo.mod) {
			parts = append(parts, mo.name)
		}
	}
	parts = append(parts, KeyName(c.KeyCode))
	return strings.Join(parts, "+")
}

// KeyName returns the display name for a platform key code.
func KeyName(code uint16) string {
	if name, ok := keyCodeNames[code]; ok {
		return name
	}
	return "Key" + strconv.Itoa(int(code))
}

// Parse reads a combination such as "Option+`" or "ctrl+shift+F5".
// A trailing "KeyNN" is accepted for codes without a name.
func Parse(s string) (Combination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Combination{}, ErrUnsetCombination
	}

	// "+" itself is a valid key, so split on the last separator only.
	var mods []string
	key := s
	if idx := strings.LastIndex(s[:len(s)-1], "+"); idx >= 0 {
		mods = strings.Split(s[:idx], "+")
		key = s[idx+1:]
	}

	var c Combination
	for _, name := range mods {
		m, ok := modifierNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return Combination{}, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
		}
		c.Modifiers |= m
	}

	code, err := parseKey(key)
	if err != nil {
		return Combination{}, err
	}
	if code == 0 {
		return Combination{}, fmt.Errorf("%w: %q uses the reserved key code 0", ErrUnsetCombination, key)
	}
	c.KeyCode = code
	return c, nil
}

// MustParse is Parse for package-level presets.
func MustParse(s string) Combination {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseKey(key string) (uint16, error) {
	lower := strings.ToLower(strings.TrimSpace(key))
	if code, ok := keyNameCodes[lower]; ok {
		return code, nil
	}
	if rest, ok := strings.CutPrefix(lower, "key"); ok {
		if n, err := strconv.ParseUint(rest, 10, 16); err == nil && n != 0 {
			return uint16(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// keyNameCodes is the reverse of keyCodeNames, lower-cased.
var keyNameCodes = func() map[string]uint16 {
	m := make(map[string]uint16, len(keyCodeNames)+len(keyAliases))
	for code, name := range keyCodeNames {
		m[strings.ToLower(name)] = code
	}
	for alias, code := range keyAliases {
		m[alias] = code
	}
	return m
}()
