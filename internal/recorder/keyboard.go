package recorder

import (
	"strings"
	"sync"

	"github.com/mj1618/uiarec/internal/model"
)

var modifierKeys = map[string]bool{
	"lshift": true, "rshift": true,
	"lcontrol": true, "rcontrol": true,
	"lmenu": true, "rmenu": true,
	"lwin": true, "rwin": true,
}

// typeKeysSpecial are characters with a meaning in type_keys syntax.
const typeKeysSpecial = "+^%~(){}"

// TranslateChord renders one key chord in pywinauto type_keys syntax.
// Modifiers pressed alone become a single token; inside a chord they are
// pressed inline and released after the chord.
func TranslateChord(keys []string) string {
	var out, release strings.Builder
	for _, key := range keys {
		key = strings.ToLower(key)
		switch {
		case modifierKeys[key]:
			token := "VK_" + strings.ToUpper(key)
			if len(keys) > 1 {
				out.WriteString("{" + token + " down}")
				release.WriteString("{" + token + " up}")
			} else {
				out.WriteString("{" + token + "}")
			}
		case key == "space":
			out.WriteByte(' ')
		case len([]rune(key)) == 1:
			if strings.Contains(typeKeysSpecial, key) {
				out.WriteString("{" + key + "}")
			} else {
				out.WriteString(key)
			}
		case key == "":
		default:
			out.WriteString("{VK_" + strings.ToUpper(key) + "}")
		}
	}
	return out.String() + release.String()
}

// KeyFunc receives a completed keyboard capture.
type KeyFunc func(target model.Path, keys string)

// KeyboardAccumulator buffers key chords between two presses of the commit
// key and emits them as one keyboard action.
type KeyboardAccumulator struct {
	commitKey string
	target    func() model.Path
	emit      KeyFunc

	mu     sync.Mutex
	open   bool
	path   model.Path
	buffer strings.Builder
}

func NewKeyboardAccumulator(commitKey string, target func() model.Path, emit KeyFunc) *KeyboardAccumulator {
	return &KeyboardAccumulator{commitKey: strings.ToLower(commitKey), target: target, emit: emit}
}

// Press handles one chord.
func (k *KeyboardAccumulator) Press(chord []string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(chord) == 1 && strings.EqualFold(chord[0], k.commitKey) {
		switch {
		case !k.open:
			k.path = k.target()
			k.open = true
		case k.buffer.Len() > 0:
			k.emit(k.path, k.buffer.String())
			k.buffer.Reset()
			k.open = false
			k.path = model.Path{}
		default:
			k.path = k.target()
		}
		return
	}
	if !k.open {
		return
	}
	k.buffer.WriteString(TranslateChord(chord))
}

// State reports whether a capture is open and what it holds so far.
func (k *KeyboardAccumulator) State() (open bool, target model.Path, keys string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.open, k.path, k.buffer.String()
}

// Reset discards an open capture.
func (k *KeyboardAccumulator) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.open = false
	k.path = model.Path{}
	k.buffer.Reset()
}
