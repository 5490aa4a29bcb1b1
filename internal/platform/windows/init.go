//go:build windows && (amd64 || arm64)

package windows

import "github.com/mj1618/uiarec/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Resolver: NewResolver(),
			Input:    NewInputSource(),
			Outliner: NewOutliner(),
		}, nil
	}
}
