//go:build windows && (amd64 || arm64)

package windows

import (
	"errors"

	"github.com/mj1618/uiarec/internal/platform"
)

const outlineThickness = 3

// Outliner draws rectangles directly on the screen device context. The
// outline disappears on the next repaint of whatever lies beneath it.
type Outliner struct{}

func NewOutliner() *Outliner { return &Outliner{} }

func (o *Outliner) Outline(b platform.Bounds, h platform.Highlight) error {
	dc, _, _ := procGetDC.Call(0)
	if dc == 0 {
		return errors.New("GetDC failed")
	}
	defer procReleaseDC.Call(0, dc)

	colour := rgb(255, 0, 0)
	if h == platform.HighlightConfirmed {
		colour = rgb(0, 200, 0)
	}
	pen, _, _ := procCreatePen.Call(psSolid, outlineThickness, colour)
	if pen == 0 {
		return errors.New("CreatePen failed")
	}
	defer procDeleteObject.Call(pen)

	brush, _, _ := procGetStockObject.Call(nullBrush)
	oldPen, _, _ := procSelectObject.Call(dc, pen)
	oldBrush, _, _ := procSelectObject.Call(dc, brush)
	procRectangle.Call(dc, uintptr(b.X), uintptr(b.Y), uintptr(b.X+b.Width), uintptr(b.Y+b.Height))
	procSelectObject.Call(dc, oldBrush)
	procSelectObject.Call(dc, oldPen)
	return nil
}
