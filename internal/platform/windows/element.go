//go:build windows && (amd64 || arm64)

package windows

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
)

const wsChild = 0x40000000

// element is a UI Automation element. The root element is the desktop.
type element struct {
	uia *automation
	obj *comObject
}

func newElement(a *automation, obj *comObject) *element {
	e := &element{uia: a, obj: obj}
	runtime.SetFinalizer(e, func(e *element) { e.obj.release() })
	return e
}

// Snapshot reads the properties the uia backend of pywinauto matches on.
func (e *element) Snapshot() (model.Snapshot, error) {
	defer runtime.KeepAlive(e)
	name, err := e.obj.bstr(slotCurrentName)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("name: %w", err)
	}
	typeID, err := e.obj.int32Prop(slotCurrentControlType)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("control type: %w", err)
	}
	autoID, _ := e.obj.bstr(slotCurrentAutomationID)
	class, _ := e.obj.bstr(slotCurrentClassName)
	pid, _ := e.obj.int32Prop(slotCurrentProcessID)
	enabled, _ := e.obj.int32Prop(slotCurrentIsEnabled)
	offscreen, _ := e.obj.int32Prop(slotCurrentIsOffscreen)
	var hwnd uintptr
	_ = e.obj.call(slotCurrentNativeHandle, uintptr(unsafe.Pointer(&hwnd)))

	controlType, ok := controlTypeNames[typeID]
	if !ok {
		controlType = "Custom"
	}
	return model.Snapshot{
		Title:       name,
		ControlType: controlType,
		AutoID:      autoID,
		ClassName:   class,
		ControlID:   controlID(hwnd),
		Handle:      int(hwnd),
		Process:     int(pid),
		Visible:     offscreen == 0,
		Enabled:     enabled != 0,
	}, nil
}

// controlID is the dialog id of a child window. Windowless elements and
// top-level windows have none.
func controlID(hwnd uintptr) int {
	if hwnd == 0 {
		return 0
	}
	style, _, _ := procGetWindowLongPtrW.Call(hwnd, uintptr(gwlStyleIndex))
	if style&wsChild == 0 {
		return 0
	}
	id, _, _ := procGetDlgCtrlID.Call(hwnd)
	return int(int32(id))
}

func (e *element) Bounds() (platform.Bounds, error) {
	defer runtime.KeepAlive(e)
	var r rect
	if err := e.obj.call(slotCurrentBoundingRect, uintptr(unsafe.Pointer(&r))); err != nil {
		return platform.Bounds{}, err
	}
	return platform.Bounds{X: int(r.Left), Y: int(r.Top), Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)}, nil
}

// Parent follows the control view, as pywinauto does.
func (e *element) Parent() (platform.Element, error) {
	defer runtime.KeepAlive(e)
	p, err := walk(e.uia.control, slotGetParentElement, e.obj)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return newElement(e.uia, p), nil
}

// Children lists the raw view children, which is what a search with no
// view condition walks.
func (e *element) Children() ([]platform.Element, error) {
	defer runtime.KeepAlive(e)
	var out []platform.Element
	child, err := walk(e.uia.raw, slotGetFirstChildElement, e.obj)
	for err == nil && child != nil {
		c := newElement(e.uia, child)
		out = append(out, c)
		child, err = walk(e.uia.raw, slotGetNextSiblingElement, c.obj)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SameElement reports whether other refers to the same live element.
func (e *element) SameElement(other platform.Element) bool {
	o, ok := other.(*element)
	if !ok {
		return false
	}
	defer runtime.KeepAlive(e)
	defer runtime.KeepAlive(o)
	return e.uia.same(e.obj, o.obj)
}

// Resolver finds the UI Automation element under the mouse pointer.
type Resolver struct{}

func NewResolver() *Resolver { return &Resolver{} }

func (r *Resolver) ElementAtCursor() (platform.Element, error) {
	a, err := getAutomation()
	if err != nil {
		return nil, err
	}
	var p point
	ok, _, callErr := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if ok == 0 {
		return nil, callErr
	}
	obj, err := a.elementFromPoint(p)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, platform.ErrNoElement
	}
	return newElement(a, obj), nil
}

var _ platform.ElementComparer = (*element)(nil)
