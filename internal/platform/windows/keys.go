//go:build windows && (amd64 || arm64)

package windows

import "fmt"

// modifierVKs are tracked while held so they can be reported with a chord.
var modifierVKs = map[uint32]string{
	0xA0: "lshift",
	0xA1: "rshift",
	0xA2: "lcontrol",
	0xA3: "rcontrol",
	0xA4: "lmenu",
	0xA5: "rmenu",
	0x5B: "lwin",
	0x5C: "rwin",
}

var namedVKs = map[uint32]string{
	0x08: "back",
	0x09: "tab",
	0x0D: "return",
	0x13: "pause",
	0x14: "capital",
	0x1B: "escape",
	0x20: "space",
	0x21: "prior",
	0x22: "next",
	0x23: "end",
	0x24: "home",
	0x25: "left",
	0x26: "up",
	0x27: "right",
	0x28: "down",
	0x2C: "snapshot",
	0x2D: "insert",
	0x2E: "delete",
	0x5D: "apps",
	0x6A: "multiply",
	0x6B: "add",
	0x6D: "subtract",
	0x6E: "decimal",
	0x6F: "divide",
	0x90: "numlock",
	0x91: "scroll",
	0xBA: ";",
	0xBB: "=",
	0xBC: ",",
	0xBD: "-",
	0xBE: ".",
	0xBF: "/",
	0xC0: "`",
	0xDB: "[",
	0xDC: `\`,
	0xDD: "]",
	0xDE: "'",
}

// keyName returns the lowercase key name for a virtual key code, or "" for
// codes that are not recorded.
func keyName(vk uint32) string {
	if name, ok := modifierVKs[vk]; ok {
		return name
	}
	if name, ok := namedVKs[vk]; ok {
		return name
	}
	switch {
	case vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 'A' && vk <= 'Z':
		return string(rune(vk - 'A' + 'a'))
	case vk >= 0x60 && vk <= 0x69:
		return fmt.Sprintf("numpad%d", vk-0x60)
	case vk >= 0x70 && vk <= 0x87:
		return fmt.Sprintf("f%d", vk-0x6F)
	}
	return ""
}
