//go:build windows && (amd64 || arm64)

package windows

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"unsafe"

	win "golang.org/x/sys/windows"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
)

// ErrHookActive is returned when a second InputSource.Run is attempted while
// the hooks are installed.
var ErrHookActive = errors.New("input hooks already installed")

// Callbacks created with NewCallback are never released, so they are created
// once and routed to whichever hook session is active.
var (
	activeHook       atomic.Pointer[hookSession]
	mouseCallback    = win.NewCallback(mouseProc)
	keyboardCallback = win.NewCallback(keyboardProc)
)

type hookSession struct {
	handle func(platform.InputEvent)
	// held modifiers in press order; touched only on the hook thread
	held []string
}

func (h *hookSession) keyDown(vk uint32) {
	name := keyName(vk)
	if name == "" {
		return
	}
	if _, mod := modifierVKs[vk]; mod {
		for _, k := range h.held {
			if k == name {
				return // auto-repeat
			}
		}
		h.held = append(h.held, name)
		h.handle(platform.KeyDown(append([]string(nil), h.held...)...))
		return
	}
	chord := append(append([]string(nil), h.held...), name)
	h.handle(platform.KeyDown(chord...))
}

func (h *hookSession) keyUp(vk uint32) {
	name, mod := modifierVKs[vk]
	if !mod {
		return
	}
	for i, k := range h.held {
		if k == name {
			h.held = append(h.held[:i], h.held[i+1:]...)
			return
		}
	}
}

func mouseProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 {
		if h := activeHook.Load(); h != nil {
			switch wParam {
			case wmLButtonDown:
				h.handle(platform.MouseDown(model.ButtonLeft))
			case wmRButtonDown:
				h.handle(platform.MouseDown(model.ButtonRight))
			case wmMButtonDown:
				h.handle(platform.MouseDown(model.ButtonMiddle))
			}
		}
	}
	r, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return r
}

func keyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 {
		if h := activeHook.Load(); h != nil {
			info := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			switch wParam {
			case wmKeyDown, wmSysKeyDown:
				h.keyDown(info.VkCode)
			case wmKeyUp, wmSysKeyUp:
				h.keyUp(info.VkCode)
			}
		}
	}
	r, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return r
}

// InputSource installs low-level mouse and keyboard hooks.
type InputSource struct{}

func NewInputSource() *InputSource { return &InputSource{} }

// Run installs the hooks on a locked OS thread and pumps its message queue
// until ctx is cancelled.
func (s *InputSource) Run(ctx context.Context, handle func(platform.InputEvent)) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	session := &hookSession{handle: handle}
	if !activeHook.CompareAndSwap(nil, session) {
		return ErrHookActive
	}
	defer activeHook.Store(nil)

	// Force creation of the thread's message queue before anyone posts to it.
	var m msg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmNoRemove)
	tid := win.GetCurrentThreadId()

	module, _, _ := procGetModuleHandleW.Call(0)
	mouseHook, _, err := procSetWindowsHookExW.Call(whMouseLL, mouseCallback, module, 0)
	if mouseHook == 0 {
		return fmt.Errorf("install mouse hook: %w", err)
	}
	defer procUnhookWindowsHookEx.Call(mouseHook)
	keyboardHook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardCallback, module, 0)
	if keyboardHook == 0 {
		return fmt.Errorf("install keyboard hook: %w", err)
	}
	defer procUnhookWindowsHookEx.Call(keyboardHook)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
		case <-done:
		}
	}()

	for {
		r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case 0:
			return nil
		case -1:
			return fmt.Errorf("GetMessage: %w", err)
		}
	}
}
