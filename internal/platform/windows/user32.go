//go:build windows && (amd64 || arm64)

package windows

import (
	win "golang.org/x/sys/windows"
)

var (
	user32   = win.NewLazySystemDLL("user32.dll")
	gdi32    = win.NewLazySystemDLL("gdi32.dll")
	kernel32 = win.NewLazySystemDLL("kernel32.dll")

	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procGetDlgCtrlID        = user32.NewProc("GetDlgCtrlID")
	procGetWindowLongPtrW   = user32.NewProc("GetWindowLongPtrW")
	procGetDC               = user32.NewProc("GetDC")
	procReleaseDC           = user32.NewProc("ReleaseDC")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")

	procCreatePen      = gdi32.NewProc("CreatePen")
	procSelectObject   = gdi32.NewProc("SelectObject")
	procGetStockObject = gdi32.NewProc("GetStockObject")
	procRectangle      = gdi32.NewProc("Rectangle")
	procDeleteObject   = gdi32.NewProc("DeleteObject")

	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
)

const (
	gwlStyle     = -16
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmRButtonDown = 0x0204
	wmMButtonDown = 0x0207

	pmNoRemove = 0x0000
	psSolid    = 0
	nullBrush  = 5
)

// gwlStyleIndex is GWL_STYLE as a signed value for GetWindowLongPtrW.
var gwlStyleIndex int32 = gwlStyle

type point struct {
	X, Y int32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type msg struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

type kbdllHookStruct struct {
	VkCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

func rgb(r, g, b byte) uintptr {
	return uintptr(r) | uintptr(g)<<8 | uintptr(b)<<16
}
