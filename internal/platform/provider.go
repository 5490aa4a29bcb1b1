package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// Provider bundles the platform backends used for recording.
type Provider struct {
	Resolver Resolver
	Input    InputSource
	// Outliner is optional.
	Outliner Outliner
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("uiarec recording is not supported on %s/%s; supported: windows/amd64, windows/arm64", runtime.GOOS, runtime.GOARCH)

// ErrNoElement is returned by a Resolver when nothing is under the pointer.
var ErrNoElement = errors.New("no element under cursor")

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/windows/init.go for the Windows registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
