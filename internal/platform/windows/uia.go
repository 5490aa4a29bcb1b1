//go:build windows && (amd64 || arm64)

package windows

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	win "golang.org/x/sys/windows"
)

var (
	ole32    = win.NewLazySystemDLL("ole32.dll")
	oleaut32 = win.NewLazySystemDLL("oleaut32.dll")

	procCoCreateInstance = ole32.NewProc("CoCreateInstance")
	procSysFreeString    = oleaut32.NewProc("SysFreeString")
)

var (
	clsidCUIAutomation = win.GUID{Data1: 0xff48dba4, Data2: 0x60ef, Data3: 0x4201, Data4: [8]byte{0xaa, 0x87, 0x54, 0x10, 0x3e, 0xef, 0x59, 0x4e}}
	iidIUIAutomation   = win.GUID{Data1: 0x30cbe57d, Data2: 0xd9d0, Data3: 0x452a, Data4: [8]byte{0xab, 0x13, 0x7a, 0xc5, 0xac, 0x48, 0x25, 0xee}}
)

const clsctxInprocServer = 0x1

// Vtable slots, counted from IUnknown.
const (
	slotRelease = 2

	// IUIAutomation
	slotCompareElements      = 3
	slotElementFromPoint     = 7
	slotGetControlViewWalker = 14
	slotGetRawViewWalker     = 16

	// IUIAutomationTreeWalker
	slotGetParentElement      = 3
	slotGetFirstChildElement  = 4
	slotGetNextSiblingElement = 6

	// IUIAutomationElement
	slotCurrentProcessID    = 20
	slotCurrentControlType  = 21
	slotCurrentName         = 23
	slotCurrentIsEnabled    = 28
	slotCurrentAutomationID = 29
	slotCurrentClassName    = 30
	slotCurrentNativeHandle = 36
	slotCurrentIsOffscreen  = 38
	slotCurrentBoundingRect = 43
)

// comObject is any COM interface pointer: its first word is the vtable.
type comObject struct {
	vtbl *[64]uintptr
}

func (o *comObject) call(slot int, args ...uintptr) error {
	all := append([]uintptr{uintptr(unsafe.Pointer(o))}, args...)
	hr, _, _ := syscall.SyscallN(o.vtbl[slot], all...)
	if int32(hr) < 0 {
		return fmt.Errorf("HRESULT 0x%08x", uint32(hr))
	}
	return nil
}

func (o *comObject) release() {
	if o != nil {
		syscall.SyscallN(o.vtbl[slotRelease], uintptr(unsafe.Pointer(o)))
	}
}

func (o *comObject) bstr(slot int) (string, error) {
	var p *uint16
	if err := o.call(slot, uintptr(unsafe.Pointer(&p))); err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	defer procSysFreeString.Call(uintptr(unsafe.Pointer(p)))
	return win.UTF16PtrToString(p), nil
}

func (o *comObject) int32Prop(slot int) (int32, error) {
	var v int32
	err := o.call(slot, uintptr(unsafe.Pointer(&v)))
	return v, err
}

// automation is the process-wide UI Automation client.
type automation struct {
	client  *comObject
	control *comObject // ControlViewWalker, for parents
	raw     *comObject // RawViewWalker, for children
}

var (
	uiaOnce sync.Once
	uia     *automation
	uiaErr  error
)

// getAutomation creates the client on a thread that joins the
// multithreaded apartment and stays alive, so that every other thread of
// the process may use the objects through the implicit MTA.
func getAutomation() (*automation, error) {
	uiaOnce.Do(func() {
		ready := make(chan struct{})
		go func() {
			runtime.LockOSThread()
			if err := win.CoInitializeEx(0, win.COINIT_MULTITHREADED); err != nil {
				uiaErr = fmt.Errorf("CoInitializeEx: %w", err)
				close(ready)
				return
			}
			uia, uiaErr = newAutomation()
			close(ready)
			select {}
		}()
		<-ready
	})
	return uia, uiaErr
}

func newAutomation() (*automation, error) {
	var client *comObject
	hr, _, _ := procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(&clsidCUIAutomation)),
		0,
		clsctxInprocServer,
		uintptr(unsafe.Pointer(&iidIUIAutomation)),
		uintptr(unsafe.Pointer(&client)),
	)
	if int32(hr) < 0 {
		return nil, fmt.Errorf("create UI Automation client: HRESULT 0x%08x", uint32(hr))
	}
	a := &automation{client: client}
	if err := client.call(slotGetControlViewWalker, uintptr(unsafe.Pointer(&a.control))); err != nil {
		return nil, fmt.Errorf("control view walker: %w", err)
	}
	if err := client.call(slotGetRawViewWalker, uintptr(unsafe.Pointer(&a.raw))); err != nil {
		return nil, fmt.Errorf("raw view walker: %w", err)
	}
	return a, nil
}

func (a *automation) elementFromPoint(p point) (*comObject, error) {
	var el *comObject
	packed := uintptr(uint32(p.X)) | uintptr(uint32(p.Y))<<32
	if err := a.client.call(slotElementFromPoint, packed, uintptr(unsafe.Pointer(&el))); err != nil {
		return nil, err
	}
	return el, nil
}

func (a *automation) same(x, y *comObject) bool {
	var eq int32
	if err := a.client.call(slotCompareElements, uintptr(unsafe.Pointer(x)), uintptr(unsafe.Pointer(y)), uintptr(unsafe.Pointer(&eq))); err != nil {
		return false
	}
	return eq != 0
}

// walk calls a tree walker slot taking an element and returning one. A nil
// result with no error means there is no such element.
func walk(walker *comObject, slot int, el *comObject) (*comObject, error) {
	var out *comObject
	if err := walker.call(slot, uintptr(unsafe.Pointer(el)), uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, err
	}
	return out, nil
}

// controlTypeNames maps UIA control type ids to the names pywinauto uses
// for control_type.
var controlTypeNames = map[int32]string{
	50000: "Button", 50001: "Calendar", 50002: "CheckBox", 50003: "ComboBox",
	50004: "Edit", 50005: "Hyperlink", 50006: "Image", 50007: "ListItem",
	50008: "List", 50009: "Menu", 50010: "MenuBar", 50011: "MenuItem",
	50012: "ProgressBar", 50013: "RadioButton", 50014: "ScrollBar", 50015: "Slider",
	50016: "Spinner", 50017: "StatusBar", 50018: "Tab", 50019: "TabItem",
	50020: "Text", 50021: "ToolBar", 50022: "ToolTip", 50023: "Tree",
	50024: "TreeItem", 50025: "Custom", 50026: "Group", 50027: "Thumb",
	50028: "DataGrid", 50029: "DataItem", 50030: "Document", 50031: "SplitButton",
	50032: "Window", 50033: "Pane", 50034: "Header", 50035: "HeaderItem",
	50036: "Table", 50037: "TitleBar", 50038: "Separator", 50039: "SemanticZoom",
	50040: "AppBar",
}
