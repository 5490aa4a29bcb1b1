package script

import "fmt"

// Fault reporting contract between instrumented scripts and the runner.
const (
	// FaultMarker prefixes the stderr line naming the failing record.
	FaultMarker = "UIAREC-FAULT"
	// FaultExitCode is the exit status of a script stopped by a correlated fault.
	FaultExitCode = 3

	FaultNotFound  = "ElementNotFoundError"
	FaultAmbiguous = "ElementAmbiguousError"
)

const (
	desktopVar = "desktop = pywinauto.Desktop(backend='uia', allow_magic_lookup=False)"
	lastIDVar  = "_uiarec_last_id = None"

	tagFunc = `def _uiarec_tag(record_id):
    global _uiarec_last_id
    _uiarec_last_id = record_id`

	sendSignalFunc = `def _uiarec_send_signal(host, port):
    with socket.create_connection((host, port), timeout=60) as conn:
        conn.sendall(b'signal\n')`

	waitSignalFunc = `def _uiarec_wait_signal(port):
    with socket.socket(socket.AF_INET, socket.SOCK_STREAM) as srv:
        srv.setsockopt(socket.SOL_SOCKET, socket.SO_REUSEADDR, 1)
        srv.bind(('', port))
        srv.listen(1)
        conn, _ = srv.accept()
        with conn:
            conn.recv(64)`
)

// TagFunc is the name of the helper that records the last attempted element.
const TagFunc = "_uiarec_tag"

// SendSignalFunc and WaitSignalFunc name the signal helpers.
const (
	SendSignalFunc = "_uiarec_send_signal"
	WaitSignalFunc = "_uiarec_wait_signal"
)

// DeclareDesktop declares the automation root every element lookup starts from.
func DeclareDesktop(d *Declarations) {
	d.Import("import pywinauto")
	d.Var(desktopVar)
}

// DeclareFaultTagging declares the instrumentation that lets a resolution
// fault be traced back to the last tagged record id.
func DeclareFaultTagging(d *Declarations) {
	d.Import("import sys")
	d.Import("import traceback")
	d.Import(fmt.Sprintf("from pywinauto.findwindows import %s, %s", FaultNotFound, FaultAmbiguous))
	d.Var(lastIDVar)
	d.Func(tagFunc)
	d.Handle(Handler{
		Clause: fmt.Sprintf("(%s, %s) as exc", FaultNotFound, FaultAmbiguous),
		Body: fmt.Sprintf("traceback.print_exc()\n"+
			"sys.stderr.write('%s %%s %%s\\n' %% (type(exc).__name__, _uiarec_last_id))\n"+
			"sys.exit(%d)", FaultMarker, FaultExitCode),
	})
}

// DeclareSleep declares what time.sleep needs.
func DeclareSleep(d *Declarations) {
	d.Import("import time")
}

// DeclareSendSignal declares the signal sender helper.
func DeclareSendSignal(d *Declarations) {
	d.Import("import socket")
	d.Func(sendSignalFunc)
}

// DeclareWaitSignal declares the signal listener helper.
func DeclareWaitSignal(d *Declarations) {
	d.Import("import socket")
	d.Func(waitSignalFunc)
}
