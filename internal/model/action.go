package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mj1618/uiarec/internal/script"
)

// ActionKind discriminates the action variants.
type ActionKind string

const (
	ActionClick         ActionKind = "click"
	ActionKeyboard      ActionKind = "keyboard"
	ActionSleep         ActionKind = "sleep"
	ActionSendSignal    ActionKind = "send_signal"
	ActionWaitForSignal ActionKind = "wait_for_signal"
)

// MouseButton names a mouse button the way the automation framework does.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// ParseMouseButton converts a flag value to a MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle":
		return ButtonMiddle, nil
	default:
		return ButtonLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// Action is one recorded or authored step of a scenario. Each variant
// contributes script-level declarations and the body statements that
// reproduce it.
type Action interface {
	ActionID() string
	Kind() ActionKind
	// Describe is the one-line text an editor shows for the action.
	Describe() string
	Declare(d *script.Declarations, mode script.Mode)
	Emit(w *script.Writer, mode script.Mode)
}

// PathAction is an action aimed at a UI element.
type PathAction interface {
	Action
	Target() Path
	// TargetRecord returns the record at index i of the target path for
	// in-place editing.
	TargetRecord(i int) (*PathRecord, bool)
}

// ActionBase carries the id shared by all variants.
type ActionBase struct {
	ID string `yaml:"id" json:"id"`
}

func newBase() ActionBase { return ActionBase{ID: uuid.NewString()} }

func (a ActionBase) ActionID() string { return a.ID }

// ItemAction resolves its target element by descending the recorded path.
type ItemAction struct {
	ActionBase `yaml:",inline"`
	Path       Path `yaml:"path" json:"path"`
}

func (a *ItemAction) Target() Path { return a.Path }

func (a *ItemAction) TargetRecord(i int) (*PathRecord, bool) {
	if i < 0 || i >= len(a.Path.Records) {
		return nil, false
	}
	return &a.Path.Records[i], true
}

func (a *ItemAction) declareItem(d *script.Declarations, mode script.Mode) {
	script.DeclareDesktop(d)
	if mode.Debug() {
		script.DeclareFaultTagging(d)
	}
}

// emitResolve writes the statements binding "item" to the target element.
// The root record stands for the desktop itself and is not descended into.
func (a *ItemAction) emitResolve(w *script.Writer, mode script.Mode) {
	w.Line("item = desktop")
	for _, rec := range a.Path.Descent() {
		search := rec.SearchText()
		if search == "" {
			w.Comment("skipped " + bracket(rec.FriendlyName()))
			continue
		}
		if mode.Debug() {
			w.Linef("%s(%s)", script.TagFunc, script.Quote(rec.ID))
		}
		w.Linef("item = item.window(%s)", search)
		if mode.Debug() {
			w.Line("item.wrapper_object()")
		}
	}
}

func bracket(s string) string { return "[" + s + "]" }

// ClickAction clicks its target element.
type ClickAction struct {
	ItemAction `yaml:",inline"`
	Button     MouseButton `yaml:"button" json:"button"`
	Double     bool        `yaml:"double" json:"double"`
}

// NewClickAction creates a click on the element at path. The action keeps
// its own copy of path.
func NewClickAction(path Path, button MouseButton, double bool) *ClickAction {
	return &ClickAction{
		ItemAction: ItemAction{ActionBase: newBase(), Path: path.Clone()},
		Button:     button,
		Double:     double,
	}
}

func (a *ClickAction) Kind() ActionKind { return ActionClick }

func (a *ClickAction) Describe() string {
	text := "click " + string(a.Button)
	if a.Double {
		text += " double"
	}
	return text + " " + a.Path.String()
}

func (a *ClickAction) Declare(d *script.Declarations, mode script.Mode) {
	a.declareItem(d, mode)
}

func (a *ClickAction) Emit(w *script.Writer, mode script.Mode) {
	a.emitResolve(w, mode)
	w.Line("item.draw_outline(colour='green', thickness=2)")
	w.Linef("item.click_input(button=%s, double=%s)", script.Quote(string(a.Button)), script.Bool(a.Double))
}

// KeyboardAction types keys into its target element.
type KeyboardAction struct {
	ItemAction `yaml:",inline"`
	Keys       string `yaml:"keys" json:"keys"`
}

// NewKeyboardAction creates key entry into the element at path. keys is in
// the automation framework's key syntax.
func NewKeyboardAction(path Path, keys string) *KeyboardAction {
	return &KeyboardAction{
		ItemAction: ItemAction{ActionBase: newBase(), Path: path.Clone()},
		Keys:       keys,
	}
}

func (a *KeyboardAction) Kind() ActionKind { return ActionKeyboard }

func (a *KeyboardAction) Describe() string {
	return fmt.Sprintf("keyboard %q %s", a.Keys, a.Path.String())
}

func (a *KeyboardAction) Declare(d *script.Declarations, mode script.Mode) {
	a.declareItem(d, mode)
}

func (a *KeyboardAction) Emit(w *script.Writer, mode script.Mode) {
	a.emitResolve(w, mode)
	w.Linef("item.type_keys(%s, with_spaces=True)", script.Quote(a.Keys))
}

// SleepAction pauses the script.
type SleepAction struct {
	ActionBase `yaml:",inline"`
	Seconds    float64 `yaml:"seconds" json:"seconds"`
}

func NewSleepAction(seconds float64) *SleepAction {
	return &SleepAction{ActionBase: newBase(), Seconds: seconds}
}

func (a *SleepAction) Kind() ActionKind { return ActionSleep }

func (a *SleepAction) Describe() string {
	return fmt.Sprintf("sleep %ss", script.Float(a.Seconds))
}

func (a *SleepAction) Declare(d *script.Declarations, _ script.Mode) {
	script.DeclareSleep(d)
}

func (a *SleepAction) Emit(w *script.Writer, _ script.Mode) {
	w.Linef("time.sleep(%s)", script.Float(a.Seconds))
}

// SendSignalAction notifies a peer listening on host:port.
type SendSignalAction struct {
	ActionBase `yaml:",inline"`
	Host       string `yaml:"host" json:"host"`
	Port       int    `yaml:"port" json:"port"`
}

func NewSendSignalAction(host string, port int) *SendSignalAction {
	return &SendSignalAction{ActionBase: newBase(), Host: host, Port: port}
}

func (a *SendSignalAction) Kind() ActionKind { return ActionSendSignal }

func (a *SendSignalAction) Describe() string {
	return fmt.Sprintf("send signal %s:%d", a.Host, a.Port)
}

func (a *SendSignalAction) Declare(d *script.Declarations, _ script.Mode) {
	script.DeclareSendSignal(d)
}

func (a *SendSignalAction) Emit(w *script.Writer, _ script.Mode) {
	w.Linef("%s(%s, %d)", script.SendSignalFunc, script.Quote(a.Host), a.Port)
}

// WaitForSignalAction blocks until a peer connects to port.
type WaitForSignalAction struct {
	ActionBase `yaml:",inline"`
	Port       int `yaml:"port" json:"port"`
}

func NewWaitForSignalAction(port int) *WaitForSignalAction {
	return &WaitForSignalAction{ActionBase: newBase(), Port: port}
}

func (a *WaitForSignalAction) Kind() ActionKind { return ActionWaitForSignal }

func (a *WaitForSignalAction) Describe() string {
	return fmt.Sprintf("wait for signal :%d", a.Port)
}

func (a *WaitForSignalAction) Declare(d *script.Declarations, _ script.Mode) {
	script.DeclareWaitSignal(d)
}

func (a *WaitForSignalAction) Emit(w *script.Writer, _ script.Mode) {
	w.Linef("%s(%d)", script.WaitSignalFunc, a.Port)
}

var (
	_ PathAction = (*ClickAction)(nil)
	_ PathAction = (*KeyboardAction)(nil)
	_ Action     = (*SleepAction)(nil)
	_ Action     = (*SendSignalAction)(nil)
	_ Action     = (*WaitForSignalAction)(nil)
)
