//go:build windows

package getsymbol

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func lookupSelf(name string) (uintptr, error) {
	// A nil module name selects the executable; the handle is borrowed, not owned.
	var module windows.Handle
	if err := windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, nil, &module); err != nil {
		return 0, fmt.Errorf("%w: GetModuleHandleEx: %w", ErrHandleUnavailable, err)
	}

	addr, err := windows.GetProcAddress(module, name)
	if err != nil {
		return 0, fmt.Errorf("%w: GetProcAddress(%s): %w", ErrNotFound, name, err)
	}
	return addr, nil
}
